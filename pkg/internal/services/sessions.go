package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peerlinehq/duocall/pkg/internal/database"
	"github.com/peerlinehq/duocall/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("session not found")
	ErrRoomFull            = errors.New("room is full")
	ErrInvalidNickname     = errors.New("nickname cannot be blank")
	ErrProvisioningFailed  = errors.New("unable to provision a room")
	ErrProviderUnavailable = errors.New("media provider unavailable")
)

// Room is the live state observed from the media provider. It is never stored;
// occupancy must be re-read on every admission decision.
type Room struct {
	SID             string
	Name            string
	NumParticipants uint32
}

type RoomProvider interface {
	CreateRoom(ctx context.Context) (Room, error)
	FetchRoom(ctx context.Context, name string) (Room, error)
}

type CredentialIssuer interface {
	IssueGrant(room, identity string, ttl time.Duration) (string, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.CallSession) error
	Get(ctx context.Context, id string) (models.CallSession, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.CallSession, error)
}

type SessionView struct {
	SessionID string `json:"session_id"`
	Room      string `json:"room"`
	IsFull    bool   `json:"is_full"`
}

type CallCredential struct {
	Token string `json:"token"`
	Room  string `json:"room"`
}

// Coordinator owns the call-session lifecycle: it provisions rooms, gates
// admission at two participants, hands out join tokens, and reconciles local
// records against the provider's authoritative room state.
type Coordinator struct {
	store    SessionStore
	rooms    RoomProvider
	issuer   CredentialIssuer
	timeout  time.Duration
	tokenTTL time.Duration
}

var Co *Coordinator

func NewCoordinator(store SessionStore, rooms RoomProvider, issuer CredentialIssuer, timeout, tokenTTL time.Duration) *Coordinator {
	return &Coordinator{
		store:    store,
		rooms:    rooms,
		issuer:   issuer,
		timeout:  timeout,
		tokenTTL: tokenTTL,
	}
}

func SetupCoordinator() {
	if Co != nil {
		return
	}
	Co = NewCoordinator(
		database.SessionStore{},
		&LiveKitProvider{Client: Lk},
		LiveKitIssuer{},
		viper.GetDuration("calling.request_timeout"),
		time.Second*time.Duration(viper.GetInt("calling.token_duration")),
	)
}

func (co *Coordinator) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, co.timeout)
}

// StartCall provisions a room first and only then writes the session record,
// so a record never exists without a backing room.
func (co *Coordinator) StartCall(ctx context.Context, metadata map[string]any) (models.CallSession, error) {
	rctx, cancel := co.bound(ctx)
	defer cancel()

	room, err := co.rooms.CreateRoom(rctx)
	if err != nil {
		return models.CallSession{}, err
	}

	session := models.CallSession{
		ExternalID: room.Name,
		Metadata:   lo.Ternary(metadata == nil, datatypes.JSONMap{}, datatypes.JSONMap(metadata)),
	}

	sctx, cancel := co.bound(ctx)
	defer cancel()

	if err := co.store.Create(sctx, &session); err != nil {
		// The orphaned room closes itself once its idle timeout elapses.
		log.Warn().Err(err).Str("room", room.Name).Msg("Unable to persist session, leaving room to expire...")
		return session, err
	}

	return session, nil
}

// ResolveSession is the reconciliation point: the local record is only a hint
// that a room was once created, and the provider stays the source of truth.
// A record whose room has expired is deleted on access and reported absent.
func (co *Coordinator) ResolveSession(ctx context.Context, id string) (SessionView, error) {
	var view SessionView
	if _, err := uuid.Parse(id); err != nil {
		return view, ErrNotFound
	}

	sctx, cancel := co.bound(ctx)
	defer cancel()

	session, err := co.store.Get(sctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, ErrNotFound
		}
		return view, err
	}

	rctx, cancel := co.bound(ctx)
	defer cancel()

	room, err := co.rooms.FetchRoom(rctx, session.ExternalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			dctx, cancel := co.bound(ctx)
			defer cancel()
			if err := co.store.Delete(dctx, session.ID); err != nil {
				log.Warn().Err(err).Str("session", session.ID).Msg("Unable to clean up stale session...")
			}
			return view, ErrNotFound
		}
		return view, err
	}

	return SessionView{
		SessionID: session.ID,
		Room:      room.Name,
		IsFull:    room.NumParticipants > 1,
	}, nil
}

// JoinSession re-checks occupancy against the provider at call time rather
// than trusting an earlier resolve. Two concurrent joins can still both pass
// the gate before either participant connects; that check-then-act window
// matches the provider's own consistency model and is accepted.
func (co *Coordinator) JoinSession(ctx context.Context, id, nickname string) (CallCredential, error) {
	var credential CallCredential
	nickname = strings.TrimSpace(nickname)
	if len(nickname) == 0 {
		return credential, ErrInvalidNickname
	}

	view, err := co.ResolveSession(ctx, id)
	if err != nil {
		return credential, err
	}
	if view.IsFull {
		return credential, ErrRoomFull
	}

	token, err := co.issuer.IssueGrant(view.Room, nickname, co.tokenTTL)
	if err != nil {
		return credential, err
	}

	return CallCredential{Token: token, Room: view.Room}, nil
}
