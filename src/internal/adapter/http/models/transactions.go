package models

type TransactionView struct {
	Description string
	Merchant    string
	Amount      string
	Currency    string
	Category    string
}

type TransactionsPage struct {
	AccountID    string
	Transactions []TransactionView
}
