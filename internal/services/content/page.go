package content

// Page is one routable content document with its metadata markers stripped.
type Page struct {
	Route       string
	Title       string
	Description string
	Keywords    string
	Body        string
	NoIndex     bool
}
