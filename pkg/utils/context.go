package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	PartyIDKey   contextKey = "party_id"
	PartyKindKey contextKey = "party_kind"
)

func GetPartyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	partyIDVal := ctx.Value(PartyIDKey)
	if partyIDVal == nil {
		return uuid.Nil, false
	}

	partyIDStr, ok := partyIDVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	partyID, err := uuid.Parse(partyIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return partyID, true
}

func GetPartyKindFromContext(ctx context.Context) (string, bool) {
	kindVal := ctx.Value(PartyKindKey)
	if kindVal == nil {
		return "", false
	}

	kind, ok := kindVal.(string)
	return kind, ok
}

func SetPartyContext(ctx context.Context, partyID uuid.UUID, kind string) context.Context {
	ctx = context.WithValue(ctx, PartyIDKey, partyID.String())
	ctx = context.WithValue(ctx, PartyKindKey, kind)
	return ctx
}
