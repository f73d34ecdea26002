package bot

import (
	"context"
	"sync"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/carscout/carscout/internal/entities"
	"github.com/carscout/carscout/internal/events"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type mockAlertRepo struct {
	Alerts []entities.SearchAlert
}

func (m *mockAlertRepo) Add(_ context.Context, alert entities.SearchAlert) error {
	m.Alerts = append(m.Alerts, alert)
	return nil
}

func (m *mockAlertRepo) GetByUser(_ context.Context, userID int64) ([]entities.SearchAlert, error) {
	result := make([]entities.SearchAlert, 0)
	for _, alert := range m.Alerts {
		if alert.UserID == userID && alert.IsActive {
			result = append(result, alert)
		}
	}
	return result, nil
}

func (m *mockAlertRepo) Deactivate(_ context.Context, alertID int) error {
	for i := range m.Alerts {
		if m.Alerts[i].ID == alertID {
			m.Alerts[i].IsActive = false
		}
	}
	return nil
}

type mockApi struct {
	SentMessages []botApi.Chattable
}

func (m *mockApi) Send(chattable botApi.Chattable) (botApi.Message, error) {
	m.SentMessages = append(m.SentMessages, chattable)
	return botApi.Message{}, nil
}

func simulateUserInput(cmd command, inputs []string) {
	for _, input := range inputs {
		cmd.OnUserInput(input)
	}
}

func Test_AddAlertCmd_WhenValidData_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockAlerts := &mockAlertRepo{}
	finished := false

	cmd := newAddAlertCommand(&mockApi{}, 0, mockAlerts)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"BMW", "5000", "15000", "München", "50", "2015", "150000"})

	assert.True(finished)
	assert.Len(mockAlerts.Alerts, 1)
	assert.Equal("bmw", mockAlerts.Alerts[0].Brand)
	assert.Equal(5000, mockAlerts.Alerts[0].MinPrice)
	assert.Equal(15000, mockAlerts.Alerts[0].MaxPrice)
	assert.Equal("München", mockAlerts.Alerts[0].Location)
	assert.Equal(50, mockAlerts.Alerts[0].Radius)
	assert.Equal(2015, mockAlerts.Alerts[0].MinYear)
	assert.Equal(150000, mockAlerts.Alerts[0].MaxMileage)
	assert.True(mockAlerts.Alerts[0].IsActive)
}

func Test_AddAlertCmd_WhenOptionalCriteriaSkipped_ShouldLeaveThemUnset(t *testing.T) {

	assert := assert.New(t)

	mockAlerts := &mockAlertRepo{}
	finished := false

	cmd := newAddAlertCommand(&mockApi{}, 0, mockAlerts)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"-", "-", "-", "-", "-", "-", "-"})

	assert.True(finished)
	assert.Len(mockAlerts.Alerts, 1)
	assert.Empty(mockAlerts.Alerts[0].Brand)
	assert.Zero(mockAlerts.Alerts[0].MaxPrice)
	assert.Empty(mockAlerts.Alerts[0].Location)
	assert.Zero(mockAlerts.Alerts[0].MaxMileage)
}

func Test_AddAlertCmd_WhenInvalidInput_ShouldWaitForValid(t *testing.T) {

	assert := assert.New(t)

	mockAlerts := &mockAlertRepo{}
	finished := false

	cmd := newAddAlertCommand(&mockApi{}, 0, mockAlerts)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	cmd.OnUserInput("BMW")
	simulateUserInput(cmd, []string{"notANumber", "5000"})
	simulateUserInput(cmd, []string{"-5", "15000"})
	cmd.OnUserInput("München")
	simulateUserInput(cmd, []string{"0", "50"})
	cmd.OnUserInput("2015")
	cmd.OnUserInput("150000")

	assert.True(finished)
	assert.Len(mockAlerts.Alerts, 1)
	assert.Equal(5000, mockAlerts.Alerts[0].MinPrice)
	assert.Equal(15000, mockAlerts.Alerts[0].MaxPrice)
	assert.Equal(50, mockAlerts.Alerts[0].Radius)
}

func Test_RemoveAlertCmd_WhenValidData_ShouldDeactivateAndPublish(t *testing.T) {

	assert := assert.New(t)

	alert := entities.SearchAlert{ID: 3, UserID: 0, Brand: "bmw", IsActive: true}
	mockAlerts := &mockAlertRepo{Alerts: []entities.SearchAlert{alert}}
	deletedID := 0
	mockBus := EventBus.New()
	_ = mockBus.Subscribe(events.AlertDeletedTopic, func(event events.AlertDeleted) { deletedID = event.AlertID })
	finished := false

	cmd, err := newRemoveAlertCommand(&mockApi{}, alert.UserID, mockBus, mockAlerts)
	assert.NoError(err)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	cmd.OnUserInput("1")

	assert.True(finished)
	assert.False(mockAlerts.Alerts[0].IsActive)
	assert.Equal(3, deletedID)
}

func Test_RemoveAlertCmd_WhenInvalidInput_ShouldWaitForValid(t *testing.T) {

	assert := assert.New(t)

	alert := entities.SearchAlert{ID: 1, UserID: 0, IsActive: true}
	mockAlerts := &mockAlertRepo{Alerts: []entities.SearchAlert{alert}}
	finished := false

	cmd, err := newRemoveAlertCommand(&mockApi{}, alert.UserID, EventBus.New(), mockAlerts)
	assert.NoError(err)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"notANumber", "2", "1"})

	assert.True(finished)
	assert.False(mockAlerts.Alerts[0].IsActive)
}

func Test_RemoveAlertCmd_WhenNoAlerts_ShouldFail(t *testing.T) {

	_, err := newRemoveAlertCommand(&mockApi{}, 0, EventBus.New(), &mockAlertRepo{})
	assert.ErrorIs(t, err, errorNoUserAlerts)
}

func Test_UserContexts_ConcurrentMessagesDoNotRace(t *testing.T) {

	b := &Bot{userContexts: make(map[int64]*userContext)}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			b.obtainUserContext(userID, userID)
			if ctx := b.lookupUserContext(userID); ctx != nil {
				_ = ctx.HasRunningCommand()
			}
			b.dropUserContext(userID)
		}(int64(i % 7))
	}
	wg.Wait()

	assert.LessOrEqual(t, len(b.userContexts), 7)
}
