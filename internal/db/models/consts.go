package models

const (
	// WhereNameIs is a reusable name equality query condition.
	WhereNameIs = "name = ?"
	// WhereEmailIs is a reusable email equality query condition.
	WhereEmailIs = "email = ?"
	// WhereTokenIs is a reusable token equality query condition.
	WhereTokenIs = "token = ?"
)
