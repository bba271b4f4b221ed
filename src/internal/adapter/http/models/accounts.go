package models

type AccountView struct {
	ID              string
	Type            string
	Description     string
	Closed          bool
	TransactionsURL string
}

type AccountsPage struct {
	Accounts []AccountView
}
