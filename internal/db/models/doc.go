// Package models contains database model definitions for users and the RBAC tables.
package models
