package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/carscout/carscout/internal/entities"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

type Repositories struct {
	Alert alertRepository
	User  userRepository
}

type alertRepository interface {
	Add(ctx context.Context, alert entities.SearchAlert) error
	GetByUser(ctx context.Context, userID int64) ([]entities.SearchAlert, error)
	Deactivate(ctx context.Context, alertID int) error
}

type userRepository interface {
	GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName string) (*entities.User, error)
	NotificationsEnabled(ctx context.Context, telegramID int64) (bool, error)
	SetNotificationsEnabled(ctx context.Context, telegramID int64, enabled bool) error
}

// Bot is the Telegram chat surface: alert management dialogs plus the
// outbound listing notifications.
type Bot struct {
	api          *botApi.BotAPI
	mu           sync.Mutex // guards userContexts, messages are handled concurrently
	userContexts map[int64]*userContext
	bus          EventBus.Bus
	repositories Repositories
}

const (
	myAlertsCommandName      = "My alerts"
	notificationsCommandName = "Notifications on/off"
	backToMenuCommandName    = "Back to menu"
)

var globalCommands = []string{addAlertCommandName, removeAlertCommandName, myAlertsCommandName,
	notificationsCommandName, backToMenuCommandName}

func NewBot(token string, bus EventBus.Bus, repositories Repositories) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if repositories.Alert == nil {
		return nil, errors.New("alert repository is nil")
	}
	if repositories.User == nil {
		return nil, errors.New("user repository is nil")
	}

	return &Bot{api: api, userContexts: make(map[int64]*userContext), bus: bus, repositories: repositories}, nil
}

func (b *Bot) Run() {

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	for update := range updates {

		if update.Message == nil {
			continue
		}

		if update.Message.Chat.IsGroup() || update.Message.Chat.IsSuperGroup() {
			continue
		}

		go b.handleMessage(update.Message)
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// SendListing delivers one listing notification. The returned error tells the
// caller the listing was not delivered.
func (b *Bot) SendListing(chatID int64, listing entities.Listing) error {
	msg := botApi.NewMessage(chatID, formatListing(listing))
	msg.ParseMode = botApi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleMessage(message *botApi.Message) {

	cmd := message.Command()
	if cmd == "" && slices.Contains(globalCommands, message.Text) {
		cmd = message.Text
	}

	if cmd != "" {
		b.handleCommand(message.From, message.Chat, cmd)
	} else {
		b.handleInput(message.From, message.Chat, message.Text)
	}
}

func (b *Bot) handleCommand(user *botApi.User, chat *botApi.Chat, command string) {

	var response botApi.Chattable
	var err error

	ctx := b.obtainUserContext(user.ID, chat.ID)

	switch command {
	case "start":
		response = b.handleStart(user, chat)
		b.dropUserContext(user.ID)
	case addAlertCommandName, removeAlertCommandName:
		cmd, cmdErr := b.createCommand(command, user.ID)
		if cmdErr != nil {
			err = fmt.Errorf("couldn't create %s: %w", command, cmdErr)
		} else {
			ctx.RunCommand(cmd)
		}
	case myAlertsCommandName:
		response = b.handleMyAlerts(chat.ID)
	case notificationsCommandName:
		response = b.handleNotificationsToggle(chat.ID)
	case backToMenuCommandName:
		messageResponse := botApi.NewMessage(chat.ID, "Back to the main menu.")
		messageResponse.ReplyMarkup = defaultReplyKeyboard()
		response = messageResponse
		b.dropUserContext(user.ID)
	default:
		response = botApi.NewMessage(chat.ID, "Unknown command!")
	}

	if err != nil {
		if errors.Is(err, errorNoUserAlerts) {
			response = botApi.NewMessage(chat.ID, "You don't have any alerts yet.")
		} else {
			response = botApi.NewMessage(chat.ID, "Internal error!")
			log.Error(err)
		}
	}

	if response == nil {
		return
	}

	_, _ = sendWithLogError(b.api, response)
}

func (b *Bot) createCommand(name string, chatID int64) (command, error) {

	switch name {
	case addAlertCommandName:
		return newAddAlertCommand(b.api, chatID, b.repositories.Alert), nil
	case removeAlertCommandName:
		return newRemoveAlertCommand(b.api, chatID, b.bus, b.repositories.Alert)
	default:
		return nil, fmt.Errorf("unknown command: %v", name)
	}
}

func (b *Bot) obtainUserContext(userID int64, chatID int64) *userContext {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := b.userContexts[userID]
	if ctx == nil {
		ctx = newUserContext(chatID)
		b.userContexts[userID] = ctx
	}
	return ctx
}

func (b *Bot) lookupUserContext(userID int64) *userContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userContexts[userID]
}

func (b *Bot) dropUserContext(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.userContexts, userID)
}

func (b *Bot) handleInput(user *botApi.User, chat *botApi.Chat, input string) {

	ctx := b.lookupUserContext(user.ID)
	if ctx == nil {
		return
	}

	if ctx.HasRunningCommand() {
		ctx.OnUserInput(input)
		return
	}

	_, _ = sendWithLogError(b.api, botApi.NewMessage(chat.ID, "Expecting a command."))
}

func (b *Bot) handleStart(user *botApi.User, chat *botApi.Chat) botApi.Chattable {

	_, err := b.repositories.User.GetOrCreate(context.Background(), user.ID,
		user.UserName, user.FirstName, user.LastName)
	if err != nil {
		log.Errorf("couldn't register user %d: %v", user.ID, err)
		return botApi.NewMessage(chat.ID, "Internal error!")
	}

	msg := botApi.NewMessage(chat.ID, "Welcome to Car Scout! Add an alert and I will watch "+
		"kleinanzeigen.de for matching cars.")
	msg.ReplyMarkup = defaultReplyKeyboard()
	return msg
}

func (b *Bot) handleMyAlerts(chatID int64) botApi.Chattable {

	alerts, err := b.repositories.Alert.GetByUser(context.Background(), chatID)
	if err != nil {
		log.Errorf("couldn't get alerts of user %d: %v", chatID, err)
		return botApi.NewMessage(chatID, "Internal error!")
	}
	if len(alerts) == 0 {
		return botApi.NewMessage(chatID, "You don't have any alerts yet.")
	}

	return botApi.NewMessage(chatID, "Your alerts:\n"+alertsToText(alerts))
}

func (b *Bot) handleNotificationsToggle(chatID int64) botApi.Chattable {

	enabled, err := b.repositories.User.NotificationsEnabled(context.Background(), chatID)
	if err == nil {
		err = b.repositories.User.SetNotificationsEnabled(context.Background(), chatID, !enabled)
	}
	if err != nil {
		log.Errorf("couldn't toggle notifications of user %d: %v", chatID, err)
		return botApi.NewMessage(chatID, "Internal error!")
	}

	if enabled {
		return botApi.NewMessage(chatID, "Notifications are now off.")
	}
	return botApi.NewMessage(chatID, "Notifications are now on.")
}

func defaultReplyKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(addAlertCommandName),
			botApi.NewKeyboardButton(myAlertsCommandName),
			botApi.NewKeyboardButton(removeAlertCommandName),
		),
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(notificationsCommandName),
		),
	)
}

func keyboardWithExit() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		),
	)
}
