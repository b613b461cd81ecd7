// Package main provides the entry point of pharmadesk, the role based access control
// service of a pharmacy backend. It serves a JSON API built on fiber that manages
// permissions, roles and user role assignments, issues bearer tokens to local users
// and answers permission checks. Persistence uses gorm on MySQL, PostgreSQL or SQLite.
package main
