package domain

import "strings"

const (
	// RepositorySignatureMarker appears in verifier output for packages
	// countersigned by the registry.
	RepositorySignatureMarker = "Signature type: Repository"
	// AuthorSignatureMarker appears in verifier output for packages signed
	// by their publisher.
	AuthorSignatureMarker = "Signature type: Author"
)

// Verification is the captured result of one signature-verification run.
type Verification struct {
	Output   string
	ExitCode int
}

// Outcome classifies a single package in the audit.
type Outcome string

const (
	OutcomeSigned        Outcome = "signed"
	OutcomeNotSigned     Outcome = "not_signed"
	OutcomeUnexpected    Outcome = "unexpected_signing_state"
	OutcomeVerifyFailed  Outcome = "verify_failed"
	OutcomeAcquireFailed Outcome = "acquire_failed"
)

// Counted reports whether the outcome contributes to the package total.
func (o Outcome) Counted() bool {
	return o == OutcomeSigned || o == OutcomeNotSigned
}

// Label is the status text printed next to the package id.
func (o Outcome) Label() string {
	switch o {
	case OutcomeSigned:
		return "SIGNED!"
	case OutcomeNotSigned:
		return "NOT SIGNED!"
	case OutcomeUnexpected:
		return "Something went wrong. These packages should be Repository signed by NuGet. Skipping."
	case OutcomeVerifyFailed:
		return "VERIFY FAILED. Skipping."
	case OutcomeAcquireFailed:
		return "ACQUIRE FAILED. Skipping."
	default:
		return string(o)
	}
}

// Classify maps verifier output to an outcome. A non-zero exit code is a
// failure in its own right, whatever the output text says.
func Classify(v Verification) Outcome {
	if v.ExitCode != 0 {
		return OutcomeVerifyFailed
	}
	if !strings.Contains(v.Output, RepositorySignatureMarker) {
		return OutcomeUnexpected
	}
	if strings.Contains(v.Output, AuthorSignatureMarker) {
		return OutcomeSigned
	}
	return OutcomeNotSigned
}
