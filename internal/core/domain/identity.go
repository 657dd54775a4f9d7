package domain

// Identity is the verified caller of a request. Subject is the stable
// identifier every todo is owned by.
type Identity struct {
	Subject        string
	Issuer         string
	Email          string
	EmailVerified  bool
	Name           string
	SignInProvider string
}

func (i Identity) IsZero() bool {
	return i.Subject == ""
}
