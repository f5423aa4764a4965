package location

import (
	"context"
	"encoding/json"
	"time"

	"coolie/models"
	"coolie/utils"

	"github.com/go-redis/redis/v8"
)

// Persister stores committed snapshots so a session survives restarts.
// Stored keys expire on their own after the TTL.
type Persister interface {
	Load(ctx context.Context, sessionID string) (*models.LocationSnapshot, error)
	Save(ctx context.Context, sessionID string, snap models.LocationSnapshot) error
}

// RedisPersister keeps the session keys the web client used to hold in
// session storage, plus the full snapshot.
type RedisPersister struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{Client: client, TTL: ttl}
}

func sessionKey(sessionID, field string) string {
	return utils.SessionKeyPrefix + sessionID + ":" + field
}

// Load returns nil, nil when nothing is stored for the session.
func (p *RedisPersister) Load(ctx context.Context, sessionID string) (*models.LocationSnapshot, error) {
	raw, err := p.Client.Get(ctx, sessionKey(sessionID, utils.LocationStateKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap models.LocationSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, snap models.LocationSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	pipe := p.Client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID, utils.LocationStateKey), raw, p.TTL)
	if snap.SelectedCity != "" {
		pipe.Set(ctx, sessionKey(sessionID, utils.SelectedCityKey), snap.SelectedCity, p.TTL)
	}
	if models.Present(snap.Hierarchy.PostalCode) {
		pipe.Set(ctx, sessionKey(sessionID, utils.UserPincodeKey), snap.Hierarchy.PostalCode, p.TTL)
	} else {
		pipe.Del(ctx, sessionKey(sessionID, utils.UserPincodeKey))
	}
	_, err = pipe.Exec(ctx)
	return err
}
