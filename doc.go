// Package main provides the entry point for the access management application.
// It initializes and runs a web server using the Fiber framework that lets
// administrators manage user accounts, roles, permissions, and email
// invitations through a web interface. The application uses gorm for data
// persistence and seeds a closed permission vocabulary at startup.
package main
