package adaptor

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"service-dispatch/internal/dto/response"
	"service-dispatch/internal/usecase"
	"service-dispatch/pkg/utils"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSettlement struct {
	usecase.SettlementService
	inputs []usecase.SettlePaymentInput
	err    error
}

func (f *fakeSettlement) SettlePayment(_ context.Context, input usecase.SettlePaymentInput) (*response.BookingResponse, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &response.BookingResponse{}, nil
}

const testSecret = "whsec_test"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(h *PaymentHandler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/payment", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.GatewayWebhook(rec, req)
	return rec
}

func TestGatewayWebhookValidSignature(t *testing.T) {
	settlement := &fakeSettlement{}
	h := NewPaymentHandler(settlement, testSecret, zap.NewNop())

	body := []byte(`{"event_id":"evt_1","event_type":"payment.captured","booking_id":"b3b0c442-98fc-41b3-a8b3-0c44298fc1c1","amount":2500}`)
	rec := postWebhook(h, body, sign(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.Len(t, settlement.inputs, 1) {
		assert.Equal(t, "evt_1", settlement.inputs[0].EventID)
		assert.Equal(t, "gateway", settlement.inputs[0].Method)
		assert.Equal(t, 2500.0, settlement.inputs[0].Amount)
	}
}

func TestGatewayWebhookRejectsBadSignature(t *testing.T) {
	settlement := &fakeSettlement{}
	h := NewPaymentHandler(settlement, testSecret, zap.NewNop())

	body := []byte(`{"event_id":"evt_1","event_type":"payment.captured","booking_id":"b3b0c442-98fc-41b3-a8b3-0c44298fc1c1","amount":2500}`)
	rec := postWebhook(h, body, "deadbeef")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, settlement.inputs)
}

func TestGatewayWebhookRejectsMissingSignature(t *testing.T) {
	settlement := &fakeSettlement{}
	h := NewPaymentHandler(settlement, testSecret, zap.NewNop())

	body := []byte(`{"event_id":"evt_1","event_type":"payment.captured","booking_id":"b3b0c442-98fc-41b3-a8b3-0c44298fc1c1","amount":2500}`)
	rec := postWebhook(h, body, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, settlement.inputs)
}

func TestGatewayWebhookIgnoresOtherEventTypes(t *testing.T) {
	settlement := &fakeSettlement{}
	h := NewPaymentHandler(settlement, testSecret, zap.NewNop())

	body := []byte(`{"event_id":"evt_2","event_type":"payment.refunded","booking_id":"b3b0c442-98fc-41b3-a8b3-0c44298fc1c1","amount":2500}`)
	rec := postWebhook(h, body, sign(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, settlement.inputs)
}

func TestGatewayWebhookIgnoresMalformedIgnorableEvent(t *testing.T) {
	settlement := &fakeSettlement{}
	h := NewPaymentHandler(settlement, testSecret, zap.NewNop())

	// an event type we discard gets acknowledged even when the payload
	// would not pass schema validation, so the gateway stops retrying
	body := []byte(`{"event_id":"evt_3","event_type":"payment.refund_requested"}`)
	rec := postWebhook(h, body, sign(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, settlement.inputs)
}

func TestGatewayWebhookReplayAcknowledged(t *testing.T) {
	settlement := &fakeSettlement{err: utils.ErrAlreadyProcessed}
	h := NewPaymentHandler(settlement, testSecret, zap.NewNop())

	body := []byte(`{"event_id":"evt_1","event_type":"payment.captured","booking_id":"b3b0c442-98fc-41b3-a8b3-0c44298fc1c1","amount":2500}`)
	rec := postWebhook(h, body, sign(body))

	// the gateway must stop retrying, so a replay is a 200
	assert.Equal(t, http.StatusOK, rec.Code)
}
