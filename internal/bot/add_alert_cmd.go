package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/carscout/carscout/internal/entities"
	"github.com/carscout/carscout/internal/logger"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const addAlertCommandName = "Add alert"

// skipAnswer is what the user sends to leave an optional criterion unset.
const skipAnswer = "-"

type addAlertCommand struct {
	api                  apiInterface
	chatID               int64
	alerts               alertRepository
	inputHandlers        []inputHandler
	curHandlerIndex      int
	brand                string
	minPrice             int
	maxPrice             int
	location             string
	radius               int
	minYear              int
	maxMileage           int
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newAddAlertCommand(api apiInterface, chatID int64, alertRepo alertRepository) *addAlertCommand {

	cmd := &addAlertCommand{api: api, chatID: chatID, alerts: alertRepo}

	brand := newBrandInput(chatID, func(input string) {
		if input != skipAnswer {
			cmd.brand = strings.ToLower(strings.TrimSpace(input))
		}
		cmd.curHandlerIndex++
	})

	minPrice := newOptionalNumberInput(chatID,
		"Minimum price in € (or \"-\" to skip):", func(value int) {
			cmd.minPrice = value
			cmd.curHandlerIndex++
		})

	maxPrice := newOptionalNumberInput(chatID,
		"Maximum price in € (or \"-\" to skip):", func(value int) {
			cmd.maxPrice = value
			cmd.curHandlerIndex++
		})

	location := newTextInput(chatID,
		"Enter a city or postal code (or \"-\" to search everywhere):", func(input string) {
			if input != skipAnswer {
				cmd.location = strings.TrimSpace(input)
			}
			cmd.curHandlerIndex++
		})

	radius := newOptionalNumberInput(chatID,
		"Search radius in km (or \"-\" to skip):", func(value int) {
			cmd.radius = value
			cmd.curHandlerIndex++
		})

	minYear := newOptionalNumberInput(chatID,
		"Earliest registration year (or \"-\" to skip):", func(value int) {
			cmd.minYear = value
			cmd.curHandlerIndex++
		})

	maxMileage := newOptionalNumberInput(chatID,
		"Maximum mileage in km (or \"-\" to skip):", func(value int) {
			cmd.maxMileage = value
			cmd.curHandlerIndex++
		})

	cmd.inputHandlers = []inputHandler{brand, minPrice, maxPrice, location, radius, minYear, maxMileage}
	return cmd
}

func (c *addAlertCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *addAlertCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *addAlertCommand) Run() {
	_, _ = sendWithLogError(c.api, c.inputHandlers[0].InitMessage())
}

func (c *addAlertCommand) OnUserInput(input string) {

	previousIndex := c.curHandlerIndex
	msg := c.inputHandlers[c.curHandlerIndex].HandleInput(input)

	handlerChanged := previousIndex != c.curHandlerIndex
	allHandlersFinished := c.curHandlerIndex >= len(c.inputHandlers)

	if !handlerChanged {
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	if !allHandlersFinished {
		_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
		return
	}

	c.addAlert()
	if c.finishCallback != nil {
		c.finishCallback()
	}
}

func (c *addAlertCommand) addAlert() {

	alert := entities.NewSearchAlert(c.chatID, c.brand, c.minPrice, c.maxPrice, c.location,
		c.radius, c.minYear, c.maxMileage)
	msg := botApi.NewMessage(c.chatID, "")
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = c.finalMessageKeyboard
	}

	if err := c.alerts.Add(context.Background(), *alert); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
		msg.Text = "Internal error!"
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	msg.Text = "Alert added! You will be notified about new matching listings."
	_, _ = sendWithLogError(c.api, msg)
}

func newBrandInput(chatID int64, onFinish func(input string)) *textInput {
	return newTextInput(chatID, "Which brand are you looking for? For example \"BMW\" or \"Volkswagen\". "+
		"Send \"-\" to search all brands.", onFinish)
}

// newOptionalNumberInput accepts a positive number or the skip answer, which
// finishes with zero.
func newOptionalNumberInput(chatID int64, initMessage string, onFinish func(value int)) *textInput {
	input := newTextInput(chatID, initMessage, func(input string) {
		if input == skipAnswer {
			onFinish(0)
			return
		}
		value, _ := strconv.Atoi(input)
		onFinish(value)
	})
	input.AddValidation(validation{
		function: func(input string) bool {
			if input == skipAnswer {
				return true
			}
			value, err := strconv.Atoi(input)
			return err == nil && value > 0
		},
		errorMessage: "Enter a positive number or \"-\" to skip",
	})
	return input
}
