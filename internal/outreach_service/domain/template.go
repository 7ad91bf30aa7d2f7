package domain

import (
	"net/url"
	"strings"
)

// Placeholder tokens recognized in message templates. Substitution is literal
// substring replacement; values are inserted without any escaping.
const (
	PlaceholderName  = "{name}"
	PlaceholderPhone = "{phone}"
)

// RenderMessage substitutes every placeholder occurrence with the contact's
// field values. Placeholders absent from the template are simply not present
// in the output.
func RenderMessage(template string, c *Contact) string {
	out := strings.ReplaceAll(template, PlaceholderName, c.Name)
	return strings.ReplaceAll(out, PlaceholderPhone, c.Phone)
}

// WhatsAppLink builds the wa.me deep link that opens a chat with the given
// canonical phone and the message pre-filled. Spaces are encoded as %20, not
// +, which is what wa.me expects in the text parameter.
func WhatsAppLink(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + text
}
