package bot

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/carscout/carscout/internal/entities"
	"github.com/carscout/carscout/internal/events"
	"github.com/carscout/carscout/internal/logger"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const removeAlertCommandName = "Remove alert"

type removeAlertCommand struct {
	api                  apiInterface
	chatID               int64
	bus                  EventBus.Bus
	alerts               alertRepository
	input                inputHandler
	alertID              int
	alertInputFinished   bool
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newRemoveAlertCommand(api apiInterface, chatID int64, bus EventBus.Bus,
	alertRepo alertRepository) (*removeAlertCommand, error) {

	cmd := removeAlertCommand{api: api, chatID: chatID, bus: bus, alerts: alertRepo}
	input, err := newAlertInput(chatID, alertRepo, func(alert *entities.SearchAlert) {
		cmd.alertID = alert.ID
		cmd.alertInputFinished = true
	})
	if err != nil {
		return nil, err
	}
	cmd.input = input
	return &cmd, nil
}

func (c *removeAlertCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *removeAlertCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *removeAlertCommand) Run() {
	_, _ = sendWithLogError(c.api, c.input.InitMessage())
}

func (c *removeAlertCommand) OnUserInput(input string) {

	msg := c.input.HandleInput(input)

	if !c.alertInputFinished {
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	c.removeAlert(c.alertID)

	if c.finishCallback != nil {
		c.finishCallback()
	}
}

func (c *removeAlertCommand) removeAlert(alertID int) {

	msg := botApi.NewMessage(c.chatID, "")
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = c.finalMessageKeyboard
	}

	if err := c.alerts.Deactivate(context.Background(), alertID); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
		msg.Text = "Internal error!"
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	c.bus.Publish(events.AlertDeletedTopic, events.AlertDeleted{AlertID: alertID})
	msg.Text = "Alert removed!"
	_, _ = sendWithLogError(c.api, msg)
}
