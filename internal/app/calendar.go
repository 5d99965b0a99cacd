package app

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarEventCreator is the slice of the calendar client the booking
// transaction depends on.
type CalendarEventCreator interface {
	CreateBookingEvent(ctx context.Context, token *oauth2.Token, booking *Booking) error
}

// CalendarClient wraps the Google Calendar OAuth2 flow and event
// creation for committed bookings.
type CalendarClient struct {
	Config *oauth2.Config

	stateSecret []byte
}

const stateTTL = 10 * time.Minute

func NewCalendarClient(clientID, clientSecret, redirectURL, stateSecret string) *CalendarClient {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return &CalendarClient{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				calendar.CalendarEventsScope,
			},
			Endpoint: google.Endpoint,
		},
		stateSecret: []byte(stateSecret),
	}
}

// AuthURL builds the consent URL. The state parameter is a short-lived
// HMAC-signed token carrying the user id, so the callback can attach
// the exchanged credential to the right account and nobody can forge a
// state for someone else's.
func (cc *CalendarClient) AuthURL(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTTL)),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.stateSecret)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return cc.Config.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// UserIDFromState verifies the state signature and recovers the user id
// embedded by AuthURL.
func (cc *CalendarClient) UserIDFromState(state string) (string, bool) {
	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return cc.stateSecret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

func (cc *CalendarClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return cc.Config.Exchange(ctx, code)
}

// CreateBookingEvent inserts a one-hour event with the attendee invited
// and a Meet conference attached. The remote call is bounded; callers
// treat failures as best-effort.
func (cc *CalendarClient) CreateBookingEvent(ctx context.Context, token *oauth2.Token, booking *Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := cc.Config.Client(ctx, token)
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("create calendar service: %w", err)
	}

	event := &calendar.Event{
		Summary:     fmt.Sprintf("Booking: %s", booking.Name),
		Description: booking.Observations,
		Start: &calendar.EventDateTime{
			DateTime: booking.Date.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: booking.Date.Add(time.Hour).Format(time.RFC3339),
		},
		Attendees: []*calendar.EventAttendee{
			{Email: booking.Email, DisplayName: booking.Name},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: booking.ID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	if _, err := srv.Events.Insert("primary", event).ConferenceDataVersion(1).Do(); err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	return nil
}
