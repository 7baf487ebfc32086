package service

import (
	"strings"

	"github.com/xenolabs/engage-backend/internal/model"
)

const offerTemplate = "Hi {name}, here's 10% off on your next order!"

func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// OfferMessage synthesizes the per-recipient message body persisted with
// each delivery-log entry.
func OfferMessage(c model.Customer) string {
	return RenderTemplate(offerTemplate, map[string]string{"name": c.Name})
}
