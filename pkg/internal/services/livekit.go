package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"
	"github.com/spf13/viper"
)

var Lk *lksdk.RoomServiceClient

func SetupLiveKit() {
	host := "https://" + viper.GetString("calling.endpoint")

	Lk = lksdk.NewRoomServiceClient(
		host,
		viper.GetString("calling.api_key"),
		viper.GetString("calling.api_secret"),
	)
}

// LiveKitProvider adapts the room service client to the RoomProvider seam.
type LiveKitProvider struct {
	Client *lksdk.RoomServiceClient
}

func (p *LiveKitProvider) CreateRoom(ctx context.Context) (Room, error) {
	res, err := p.Client.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:             uuid.NewString(),
		EmptyTimeout:     viper.GetUint32("calling.empty_timeout_duration"),
		DepartureTimeout: viper.GetUint32("calling.departure_timeout_duration"),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Room{}, ErrProviderUnavailable
		}
		return Room{}, fmt.Errorf("%w: remote livekit error: %v", ErrProvisioningFailed, err)
	}
	return Room{SID: res.Sid, Name: res.Name, NumParticipants: res.NumParticipants}, nil
}

// FetchRoom reports ErrNotFound once the provider has expired the room; rooms
// configured with an idle timeout vanish on their own after everyone leaves.
func (p *LiveKitProvider) FetchRoom(ctx context.Context, name string) (Room, error) {
	res, err := p.Client.ListRooms(ctx, &livekit.ListRoomsRequest{
		Names: []string{name},
	})
	if err != nil {
		return Room{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if len(res.Rooms) == 0 {
		return Room{}, ErrNotFound
	}
	room := res.Rooms[0]
	return Room{SID: room.Sid, Name: room.Name, NumParticipants: room.NumParticipants}, nil
}

// LiveKitIssuer mints join tokens signed with the provider API secret.
type LiveKitIssuer struct{}

func (LiveKitIssuer) IssueGrant(room, identity string, ttl time.Duration) (string, error) {
	grant := &auth.VideoGrant{
		Room:     room,
		RoomJoin: true,
	}

	tk := auth.NewAccessToken(viper.GetString("calling.api_key"), viper.GetString("calling.api_secret"))
	tk.AddGrant(grant).
		SetIdentity(identity).
		SetValidFor(ttl)

	return tk.ToJWT()
}
