package apiclient

// LoginPath is where the session is sent when it can no longer be recovered
const LoginPath = "/login"

// Navigator receives redirect requests. The pipeline asks for navigation; it never owns routing.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to a Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) {
	f(path)
}

type noopNavigator struct{}

func (noopNavigator) Redirect(string) {}
