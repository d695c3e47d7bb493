package rendezvous

import (
	"time"

	"pylon/internal/domain"
)

type allocateRequest struct {
	AppID string      `json:"app_id"`
	Side  domain.Side `json:"side"`
}

type claimRequest struct {
	AppID     string           `json:"app_id"`
	Nameplate domain.Nameplate `json:"nameplate"`
	Side      domain.Side      `json:"side"`
}

type claimResponse struct {
	Status    domain.ClaimStatus `json:"status"`
	ExpiresAt time.Time          `json:"expires_at"`
}

type exchangeRequest struct {
	AppID   string      `json:"app_id"`
	Meeting string      `json:"meeting"`
	Side    domain.Side `json:"side"`
	Body    []byte      `json:"body"`
}

type exchangeResponse struct {
	Body []byte `json:"body"`
}

type postRequest struct {
	Side  domain.Side `json:"side"`
	Phase string      `json:"phase"`
	Body  []byte      `json:"body"`
}

type closeRequest struct {
	Side domain.Side `json:"side"`
}

type errorResponse struct {
	Error string `json:"error"`
}
