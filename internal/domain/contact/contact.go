package contact

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/shared/biztime"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	maxNameLength = 100
	maxTags       = 20
)

// Contact is a person the business talks to: a prospect, a customer or a past customer.
type Contact struct {
	id        uint
	firstName string
	lastName  string
	email     string
	phone     string
	source    string
	status    Status
	tags      []string
	notes     string
	createdAt time.Time
	updatedAt time.Time
}

// NewContact requires a first name and at least one of email or phone.
func NewContact(firstName, lastName, email, phone, source string) (*Contact, error) {
	c := &Contact{
		status: StatusLead,
		source: strings.TrimSpace(source),
		tags:   []string{},
	}
	if err := c.setDetails(firstName, lastName, email, phone); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	c.createdAt = now
	c.updatedAt = now
	return c, nil
}

func (c *Contact) setDetails(firstName, lastName, email, phone string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return fmt.Errorf("first name is required")
	}
	if len(firstName) > maxNameLength || len(lastName) > maxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", maxNameLength)
	}

	normEmail, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	normPhone := NormalizePhone(phone)
	if normEmail == "" && normPhone == "" {
		return fmt.Errorf("email or phone is required")
	}

	c.firstName = firstName
	c.lastName = lastName
	c.email = normEmail
	c.phone = normPhone
	return nil
}

// NormalizeEmail lower-cases and validates an address. Empty input is allowed.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}
	if len(email) > 255 || !emailRegex.MatchString(email) {
		return "", fmt.Errorf("invalid email format: %s", email)
	}
	return email, nil
}

// NormalizePhone keeps digits and a leading plus: "+972 (54) 123-4567" -> "+972541234567".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

func (c *Contact) UpdateDetails(firstName, lastName, email, phone string) error {
	if err := c.setDetails(firstName, lastName, email, phone); err != nil {
		return err
	}
	c.touch()
	return nil
}

func (c *Contact) SetNotes(notes string) {
	c.notes = strings.TrimSpace(notes)
	c.touch()
}

func (c *Contact) SetSource(source string) {
	c.source = strings.TrimSpace(source)
	c.touch()
}

// SetTags trims, de-duplicates case-insensitively and drops empty tags.
func (c *Contact) SetTags(tags []string) error {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	if len(out) > maxTags {
		return fmt.Errorf("a contact can have at most %d tags", maxTags)
	}
	c.tags = out
	c.touch()
	return nil
}

func (c *Contact) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid contact status: %s", status)
	}
	if c.status == status {
		return nil
	}
	c.status = status
	c.touch()
	return nil
}

// MarkCustomer reports whether the status changed.
func (c *Contact) MarkCustomer() bool {
	if c.status == StatusCustomer {
		return false
	}
	c.status = StatusCustomer
	c.touch()
	return true
}

func (c *Contact) touch() {
	c.updatedAt = biztime.NowUTC()
}

func (c *Contact) ID() uint             { return c.id }
func (c *Contact) FirstName() string    { return c.firstName }
func (c *Contact) LastName() string     { return c.lastName }
func (c *Contact) Email() string        { return c.email }
func (c *Contact) Phone() string        { return c.phone }
func (c *Contact) Source() string       { return c.source }
func (c *Contact) Status() Status       { return c.status }
func (c *Contact) Tags() []string       { return c.tags }
func (c *Contact) Notes() string        { return c.notes }
func (c *Contact) CreatedAt() time.Time { return c.createdAt }
func (c *Contact) UpdatedAt() time.Time { return c.updatedAt }

func (c *Contact) FullName() string {
	return strings.TrimSpace(c.firstName + " " + c.lastName)
}

func (c *Contact) SetID(id uint) {
	c.id = id
}

type ContactParams struct {
	ID        uint
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Source    string
	Status    Status
	Tags      []string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReconstructContact rebuilds a contact from storage without validation.
func ReconstructContact(p ContactParams) *Contact {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Contact{
		id:        p.ID,
		firstName: p.FirstName,
		lastName:  p.LastName,
		email:     p.Email,
		phone:     p.Phone,
		source:    p.Source,
		status:    p.Status,
		tags:      tags,
		notes:     p.Notes,
		createdAt: p.CreatedAt,
		updatedAt: p.UpdatedAt,
	}
}
