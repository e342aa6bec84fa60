package api

// FormError identifies why a form submission was rejected. It travels in
// the e query parameter of the redirect target so the form page can show
// the matching message.
type FormError string

const (
	FormErrorInvalidCode      FormError = "invalid"
	FormErrorUsedCode         FormError = "used"
	FormErrorInvalidDate      FormError = "date"
	FormErrorPasswordMismatch FormError = "mismatch"
	FormErrorEmailExists      FormError = "email-exists"
	FormErrorHandleExists     FormError = "git-exists"
	FormErrorMmostExists      FormError = "mmost-exists"
	FormErrorNameTaken        FormError = "name-taken"
	FormErrorNameReserved     FormError = "name-reserved"
	FormErrorEmail            FormError = "email"
	FormErrorPassword         FormError = "password"
	FormErrorCredentials      FormError = "credentials"
	FormErrorOther            FormError = "other"
)

var knownFormErrors = map[FormError]struct{}{
	FormErrorInvalidCode:      {},
	FormErrorUsedCode:         {},
	FormErrorInvalidDate:      {},
	FormErrorPasswordMismatch: {},
	FormErrorEmailExists:      {},
	FormErrorHandleExists:     {},
	FormErrorMmostExists:      {},
	FormErrorNameTaken:        {},
	FormErrorNameReserved:     {},
	FormErrorEmail:            {},
	FormErrorPassword:         {},
	FormErrorCredentials:      {},
	FormErrorOther:            {},
}

// ParseFormError maps a raw query value back onto the enum. Unknown
// values collapse to FormErrorOther so pages never echo arbitrary input.
func ParseFormError(raw string) (FormError, bool) {
	if raw == "" {
		return "", false
	}
	candidate := FormError(raw)
	if _, ok := knownFormErrors[candidate]; ok {
		return candidate, true
	}
	return FormErrorOther, true
}

func (e FormError) String() string {
	return string(e)
}
