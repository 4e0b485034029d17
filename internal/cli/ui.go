package cli

// UserInterface adapts the console and line reader to the coordinator's
// display-and-confirmation contract. The same value backs the shell and any
// one-shot invocation.
type UserInterface struct {
	console *Console
	reader  LineReader
}

// NewUserInterface creates the adapter.
func NewUserInterface(console *Console, reader LineReader) *UserInterface {
	return &UserInterface{console: console, reader: reader}
}

// WriteMessage renders one coordinator message.
func (u *UserInterface) WriteMessage(text string) {
	u.console.Display(text)
}

// ReadConfirmation shows the confirmation prompt and blocks for a line.
func (u *UserInterface) ReadConfirmation(prompt string) (string, error) {
	return u.reader.ReadLine(prompt)
}
