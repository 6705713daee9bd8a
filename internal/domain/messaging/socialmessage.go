package messaging

import (
	"fmt"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformWhatsApp  Platform = "whatsapp"
)

func (p Platform) IsValid() bool {
	return p == PlatformFacebook || p == PlatformInstagram || p == PlatformWhatsApp
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type SocialStatus string

const (
	SocialUnread   SocialStatus = "unread"
	SocialRead     SocialStatus = "read"
	SocialReplied  SocialStatus = "replied"
	SocialArchived SocialStatus = "archived"
)

func (s SocialStatus) IsValid() bool {
	switch s {
	case SocialUnread, SocialRead, SocialReplied, SocialArchived:
		return true
	}
	return false
}

// SocialMessage is a message exchanged on a social platform inbox.
type SocialMessage struct {
	id           uint
	platform     Platform
	direction    Direction
	externalID   string
	senderHandle string
	contactID    *uint
	replyToID    *uint
	content      string
	status       SocialStatus
	receivedAt   time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func NewInboundMessage(platform Platform, externalID, senderHandle, content string, receivedAt time.Time) (*SocialMessage, error) {
	if !platform.IsValid() {
		return nil, fmt.Errorf("invalid platform: %s", platform)
	}
	senderHandle = strings.TrimSpace(senderHandle)
	if senderHandle == "" {
		return nil, fmt.Errorf("sender handle is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is required")
	}
	now := biztime.NowUTC()
	if receivedAt.IsZero() {
		receivedAt = now
	}
	return &SocialMessage{
		platform:     platform,
		direction:    DirectionInbound,
		externalID:   strings.TrimSpace(externalID),
		senderHandle: senderHandle,
		content:      content,
		status:       SocialUnread,
		receivedAt:   receivedAt.UTC(),
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reply records an outbound answer and marks the original as replied.
func (m *SocialMessage) Reply(content string) (*SocialMessage, error) {
	if m.direction != DirectionInbound {
		return nil, fmt.Errorf("only inbound messages can be replied to")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("reply content is required")
	}
	now := biztime.NowUTC()
	originalID := m.id
	reply := &SocialMessage{
		platform:     m.platform,
		direction:    DirectionOutbound,
		senderHandle: m.senderHandle,
		contactID:    m.contactID,
		replyToID:    &originalID,
		content:      content,
		status:       SocialRead,
		receivedAt:   now,
		createdAt:    now,
		updatedAt:    now,
	}
	m.status = SocialReplied
	m.updatedAt = now
	return reply, nil
}

func (m *SocialMessage) ChangeStatus(status SocialStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid message status: %s", status)
	}
	m.status = status
	m.updatedAt = biztime.NowUTC()
	return nil
}

func (m *SocialMessage) LinkContact(contactID uint) error {
	if contactID == 0 {
		return fmt.Errorf("contact ID is required")
	}
	m.contactID = &contactID
	m.updatedAt = biztime.NowUTC()
	return nil
}

func (m *SocialMessage) ID() uint             { return m.id }
func (m *SocialMessage) Platform() Platform   { return m.platform }
func (m *SocialMessage) Direction() Direction { return m.direction }
func (m *SocialMessage) ExternalID() string   { return m.externalID }
func (m *SocialMessage) SenderHandle() string { return m.senderHandle }
func (m *SocialMessage) ContactID() *uint     { return m.contactID }
func (m *SocialMessage) ReplyToID() *uint     { return m.replyToID }
func (m *SocialMessage) Content() string      { return m.content }
func (m *SocialMessage) Status() SocialStatus { return m.status }
func (m *SocialMessage) ReceivedAt() time.Time {
	return m.receivedAt
}
func (m *SocialMessage) CreatedAt() time.Time { return m.createdAt }
func (m *SocialMessage) UpdatedAt() time.Time { return m.updatedAt }

func (m *SocialMessage) SetID(id uint) { m.id = id }

type SocialMessageParams struct {
	ID           uint
	Platform     Platform
	Direction    Direction
	ExternalID   string
	SenderHandle string
	ContactID    *uint
	ReplyToID    *uint
	Content      string
	Status       SocialStatus
	ReceivedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ReconstructSocialMessage(p SocialMessageParams) *SocialMessage {
	return &SocialMessage{
		id:           p.ID,
		platform:     p.Platform,
		direction:    p.Direction,
		externalID:   p.ExternalID,
		senderHandle: p.SenderHandle,
		contactID:    p.ContactID,
		replyToID:    p.ReplyToID,
		content:      p.Content,
		status:       p.Status,
		receivedAt:   p.ReceivedAt,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}
}
