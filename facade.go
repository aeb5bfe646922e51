package shellauth

import "context"

// Facade adapts session store results into navigation triggers and
// user-visible notifications for the shell's form handlers. It holds no
// state of its own; all state lives in the [Store].
//
// A nil navigator or notifier is tolerated: the corresponding side effect
// is simply skipped, which keeps headless tests and early-boot code paths
// trivial.
type Facade struct {
	session *Store
	nav     Navigator
	notify  Notifier
	routes  RouteConfig
}

// NewFacade wires a facade over the given store.
func NewFacade(session *Store, nav Navigator, notifier Notifier) *Facade {
	return &Facade{
		session: session,
		nav:     nav,
		notify:  notifier,
		routes:  session.Routes(),
	}
}

// SubmitLogin runs the login flow: on success a success notification is
// emitted and the shell navigates home; on failure an error notification
// carries the store's last error.
func (f *Facade) SubmitLogin(ctx context.Context, username, password string) bool {
	if !f.session.Login(ctx, username, password) {
		f.send(NotifyError, f.failureText("Login failed"))
		return false
	}

	f.send(NotifySuccess, "Welcome back, "+f.session.Username())
	f.goTo(f.routes.HomePath)
	return true
}

// SubmitRegister runs the registration flow, symmetric to [Facade.SubmitLogin].
func (f *Facade) SubmitRegister(ctx context.Context, username, email, password, confirmPassword string) bool {
	if !f.session.Register(ctx, username, email, password, confirmPassword) {
		f.send(NotifyError, f.failureText("Registration failed"))
		return false
	}

	f.send(NotifySuccess, "Welcome, "+f.session.Username())
	f.goTo(f.routes.HomePath)
	return true
}

// SubmitLogout clears the session and returns the shell to the login view.
func (f *Facade) SubmitLogout(ctx context.Context) {
	f.session.Logout(ctx)
	f.send(NotifyInfo, "Signed out")
	f.goTo(f.routes.LoginPath)
}

// ShowLogin navigates to the login view without touching session state.
func (f *Facade) ShowLogin() {
	f.goTo(f.routes.LoginPath)
}

// ShowRegister navigates to the registration view without touching session
// state.
func (f *Facade) ShowRegister() {
	f.goTo(f.routes.RegisterPath)
}

func (f *Facade) failureText(fallback string) string {
	if msg := f.session.LastError(); msg != "" {
		return msg
	}
	return fallback
}

func (f *Facade) send(kind NotificationKind, text string) {
	if f.notify == nil {
		return
	}
	f.notify.Notify(Notification{Kind: kind, Text: text})
}

func (f *Facade) goTo(path string) {
	if f.nav == nil {
		return
	}
	f.nav.Navigate(path)
}
