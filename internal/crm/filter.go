package crm

import (
	"strings"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// FilterAll is the "no filter" value of every predicate selector.
const FilterAll = "all"

// LeadFilter is a predicate conjunction over the cached lead list. Unset
// (empty or "all") predicates always match.
type LeadFilter struct {
	Temperature string
	Status      string
	Channel     string
	Search      string
}

func (f LeadFilter) active(v string) bool {
	return v != "" && v != FilterAll
}

// Match reports whether the lead passes every active predicate. Free text
// matches case-insensitively against name, email or phone.
func (f LeadFilter) Match(l *entity.Lead) bool {
	if f.active(f.Temperature) && l.Temperature() != f.Temperature {
		return false
	}
	if f.active(f.Status) && l.Status() != f.Status {
		return false
	}
	if f.active(f.Channel) && l.SourceType() != f.Channel {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.Contact.Name), q) &&
			!strings.Contains(strings.ToLower(l.Contact.Email), q) &&
			!strings.Contains(strings.ToLower(l.Contact.Phone), q) {
			return false
		}
	}
	return true
}

// FilterLeads returns the matching subsequence in its original order.
func FilterLeads(leads []entity.Lead, f LeadFilter) []entity.Lead {
	out := make([]entity.Lead, 0, len(leads))
	for i := range leads {
		if f.Match(&leads[i]) {
			out = append(out, leads[i])
		}
	}
	return out
}

// FilterConversations narrows history entries to a date range. Zero bounds
// are open ends.
func FilterConversations(convs []entity.Conversation, from, to time.Time) []entity.Conversation {
	out := make([]entity.Conversation, 0, len(convs))
	for _, c := range convs {
		if !from.IsZero() && c.StartedAt.Before(from) {
			continue
		}
		if !to.IsZero() && c.StartedAt.After(to) {
			continue
		}
		out = append(out, c)
	}
	return out
}
