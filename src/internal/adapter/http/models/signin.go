package models

type SignInPage struct {
	Action        string
	ClientID      string
	RedirectURI   string
	ResponseType  string
	State         string
	Authenticated bool
}
