package domain

type View string

const (
	ViewList View = "list"
	ViewAdd  View = "add"
	ViewEdit View = "edit"
)
