package payer

import (
	"fmt"
	"time"
)

const supervisionDisclosure = "Visits are performed under attending physician supervision."

// ClassifyAcceptance maps a payer's credentialing state and dates to an
// acceptance status and patient-facing message. Pure; rules are evaluated
// top to bottom and the first match wins.
func ClassifyAcceptance(p *Payer, today time.Time) Acceptance {
	today = truncateToDay(today)

	if p.CredentialingStatus == CredApproved && p.EffectiveDate != nil {
		eff := truncateToDay(*p.EffectiveDate)
		if !eff.After(today) {
			msg := fmt.Sprintf("%s is in network.", p.Name)
			if p.RequiresAttending {
				msg += " " + supervisionDisclosure
			}
			return Acceptance{Status: StatusActive, Message: msg}
		}
		return Acceptance{
			Status:  StatusFuture,
			Message: fmt.Sprintf("%s coverage becomes effective on %s.", p.Name, eff.Format("2006-01-02")),
		}
	}

	inCredentialing := p.CredentialingStatus == CredWaiting || p.CredentialingStatus == CredInProgress

	if inCredentialing && p.ProjectedEffectiveDate != nil {
		proj := truncateToDay(*p.ProjectedEffectiveDate)
		if proj.After(today) {
			return Acceptance{
				Status:  StatusFuture,
				Message: fmt.Sprintf("We expect to accept %s starting %s.", p.Name, proj.Format("2006-01-02")),
			}
		}
	}

	if inCredentialing {
		return Acceptance{
			Status:  StatusFuture,
			Message: fmt.Sprintf("We are working on accepting %s. Check back soon.", p.Name),
		}
	}

	return Acceptance{Status: StatusNotAccepted, Message: notAcceptedMessage(p)}
}

func notAcceptedMessage(p *Payer) string {
	switch p.CredentialingStatus {
	case CredDenied:
		return fmt.Sprintf("We are unable to accept %s.", p.Name)
	case CredBlocked:
		return fmt.Sprintf("Credentialing with %s is currently blocked.", p.Name)
	case CredOnPause:
		return fmt.Sprintf("Credentialing with %s is on pause.", p.Name)
	case CredNotStarted:
		return fmt.Sprintf("We have not started credentialing with %s.", p.Name)
	default:
		return fmt.Sprintf("%s is not currently accepted.", p.Name)
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// statusRank orders acceptance statuses for search results, bookable first.
func statusRank(status string) int {
	switch status {
	case StatusActive:
		return 0
	case StatusFuture:
		return 1
	default:
		return 2
	}
}
