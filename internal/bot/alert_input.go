package bot

import (
	"context"
	"strconv"

	"github.com/carscout/carscout/internal/entities"
	"github.com/carscout/carscout/internal/logger"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var errorNoUserAlerts = errors.New("user has no alerts")

// alertInput lets the user pick one of their alerts by list number.
type alertInput struct {
	chatID     int64
	userAlerts []entities.SearchAlert
	onFinish   func(alert *entities.SearchAlert)
}

func newAlertInput(chatID int64, alertRepo alertRepository, onFinish func(alert *entities.SearchAlert)) (*alertInput, error) {
	userAlerts, err := alertRepo.GetByUser(context.Background(), chatID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
		return nil, err
	}
	if len(userAlerts) == 0 {
		return nil, errorNoUserAlerts
	}
	return &alertInput{chatID: chatID, userAlerts: userAlerts, onFinish: onFinish}, nil
}

func (a *alertInput) InitMessage() botApi.Chattable {

	text := "Enter the alert number:\n"
	text += alertsToText(a.userAlerts)

	msg := botApi.NewMessage(a.chatID, text)
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (a *alertInput) HandleInput(input string) botApi.Chattable {

	number, err := strconv.Atoi(input)
	if err != nil {
		return botApi.NewMessage(a.chatID, "Enter a number!")
	}

	if number < 1 || number > len(a.userAlerts) {
		return botApi.NewMessage(a.chatID, "There is no alert with that number.")
	}

	a.onFinish(&a.userAlerts[number-1])
	return nil
}

func alertsToText(alerts []entities.SearchAlert) (text string) {
	for i, alert := range alerts {

		text += strconv.Itoa(i+1) + ": "

		if alert.Brand != "" {
			text += alert.Brand
		} else {
			text += "any brand"
		}

		if alert.MaxPrice > 0 {
			text += ", up to " + strconv.Itoa(alert.MaxPrice) + " €"
		}
		if alert.Location != "" {
			text += ", near " + alert.Location
			if alert.Radius > 0 {
				text += " (" + strconv.Itoa(alert.Radius) + " km)"
			}
		}
		if alert.MinYear > 0 {
			text += ", from " + strconv.Itoa(alert.MinYear)
		}
		if alert.MaxMileage > 0 {
			text += ", max " + strconv.Itoa(alert.MaxMileage) + " km"
		}

		text += ", created " + alert.CreatedAt.Format("2006-01-02 15:04:05") + "\n"
	}
	return text
}
