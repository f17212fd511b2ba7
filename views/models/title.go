package models

import "fmt"

const (
	EmptyText         = "Currently, there are no TODOs."
	InputHint         = "add something"
	AddLabel          = "Add note"
	LoadingText       = "Loading"
	StorageErrorLabel = "Storage error"
)

// Title renders the header text shared by every front end.
func Title(count int) string {
	if count == 0 {
		return "Todo list"
	}
	if count == 1 {
		return "Todo list: 1 note"
	}
	return fmt.Sprintf("Todo list: %d notes", count)
}
