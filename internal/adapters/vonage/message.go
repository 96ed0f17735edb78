package vonage

import (
	"fmt"
	"maps"
	"slices"
)

const (
	ChannelSMS       = "sms"
	ChannelMMS       = "mms"
	ChannelWhatsApp  = "whatsapp"
	ChannelMessenger = "messenger"
	ChannelViber     = "viber_service"
)

// message types each channel accepts
var channelTypes = map[string][]string{
	ChannelSMS:       {"text"},
	ChannelMMS:       {"image", "vcard", "audio", "video"},
	ChannelWhatsApp:  {"text", "image", "audio", "video", "file", "template", "sticker", "custom"},
	ChannelMessenger: {"text", "image", "audio", "video", "file"},
	ChannelViber:     {"text", "image", "video", "file"},
}

// Message is a channel specific payload without addressing.
type Message struct {
	Channel string
	Type    string
	Content any
	Opts    map[string]any
}

// NewMessage validates the channel/type pair. Text content must be a string,
// everything else an object such as {"url": "..."}.
func NewMessage(channel, msgType string, content any, opts map[string]any) (Message, error) {
	types, ok := channelTypes[channel]
	if !ok {
		return Message{}, fmt.Errorf("%w: unknown channel %q", ErrInvalidMessage, channel)
	}
	if !slices.Contains(types, msgType) {
		return Message{}, fmt.Errorf("%w: %s does not support %q messages", ErrInvalidMessage, channel, msgType)
	}
	switch c := content.(type) {
	case string:
		if msgType != "text" {
			return Message{}, fmt.Errorf("%w: %s content must be an object", ErrInvalidMessage, msgType)
		}
		if c == "" {
			return Message{}, fmt.Errorf("%w: text is empty", ErrInvalidMessage)
		}
	case map[string]any:
		if msgType == "text" {
			return Message{}, fmt.Errorf("%w: text content must be a string", ErrInvalidMessage)
		}
	default:
		return Message{}, fmt.Errorf("%w: unsupported content %T", ErrInvalidMessage, content)
	}
	return Message{Channel: channel, Type: msgType, Content: content, Opts: opts}, nil
}

func SMS(text string, opts map[string]any) (Message, error) {
	return NewMessage(ChannelSMS, "text", text, opts)
}

func MMS(msgType string, content map[string]any, opts map[string]any) (Message, error) {
	return NewMessage(ChannelMMS, msgType, content, opts)
}

func WhatsApp(msgType string, content any, opts map[string]any) (Message, error) {
	return NewMessage(ChannelWhatsApp, msgType, content, opts)
}

func Messenger(msgType string, content any, opts map[string]any) (Message, error) {
	return NewMessage(ChannelMessenger, msgType, content, opts)
}

func Viber(msgType string, content any, opts map[string]any) (Message, error) {
	return NewMessage(ChannelViber, msgType, content, opts)
}

// Params merges addressing, content and options into a Send payload.
// Options never override the addressing or content keys.
func (m Message) Params(to, from string) map[string]any {
	p := make(map[string]any, len(m.Opts)+5)
	maps.Copy(p, m.Opts)
	p["to"] = to
	p["from"] = from
	p["channel"] = m.Channel
	p["message_type"] = m.Type
	p[m.Type] = m.Content
	return p
}
