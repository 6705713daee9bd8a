package messaging

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS || c == ChannelWhatsApp
}

func (c Channel) String() string { return string(c) }
