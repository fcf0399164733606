package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"change-order-api/config"
	"change-order-api/models"
	"change-order-api/services"
	"change-order-api/store"

	"github.com/gin-gonic/gin"
)

type recordResponse struct {
	Success     bool                      `json:"success"`
	ChangeOrder *models.StoredChangeOrder `json:"change_order"`
	Error       string                    `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	Init(services.NewLifecycleService(st))

	router := gin.New()
	router.POST("/api/v1/change-orders/draft", SaveDraft)
	router.POST("/api/v1/change-orders", SubmitChangeOrder)
	router.GET("/api/v1/change-orders", GetChangeOrders)
	router.GET("/api/v1/change-orders/:id", GetChangeOrder)
	router.GET("/api/v1/team/queue", GetTeamQueue)
	router.PATCH("/api/v1/team/queue/:id", UpdateTeamQueueItem)
	router.POST("/api/v1/team/queue/:id/decision", ApplyTeamDecision)
	router.POST("/api/v1/team/queue/:id/email-delivery", UpdateDecisionEmailDelivery)
	return router, st
}

func stubMailer(t *testing.T, result config.MailResult, err error) *int {
	t.Helper()
	calls := 0
	orig := sendDecisionMail
	sendDecisionMail = func(to []string, subject, text, html string) (config.MailResult, error) {
		calls++
		return result, err
	}
	t.Cleanup(func() { sendDecisionMail = orig })
	return &calls
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) (*httptest.ResponseRecorder, recordResponse) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp recordResponse
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func submittableInput() models.ChangeOrderInput {
	return models.ChangeOrderInput{
		ProjectID:       "PRJ-7",
		ContractorName:  "Dana Fields",
		ContractorEmail: "dana@example.com",
		WorkPerformedAt: time.Now().Add(-2 * time.Hour).Format(time.RFC3339),
		Scope:           "Replace damaged subfloor",
		Quantity:        4,
		Unit:            "sheets",
		MaterialCost:    220,
		LaborCost:       180,
		WhyNeeded:       "Water damage found during demolition",
		WhyNotInTurnkey: "Not visible at bid time",
		Photos:          []string{"https://example.com/p1.jpg"},
	}
}

func TestSubmitChangeOrderValid(t *testing.T) {
	router, _ := setupRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", submittableInput())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if resp.ChangeOrder.SubmissionStatus != models.SubmissionSubmitted {
		t.Errorf("submission status = %s, want SUBMITTED", resp.ChangeOrder.SubmissionStatus)
	}
	if len(resp.ChangeOrder.BlockingReasons) != 0 {
		t.Errorf("blocking reasons = %v", resp.ChangeOrder.BlockingReasons)
	}
}

func TestSubmitChangeOrderBlockedIsStillCreated(t *testing.T) {
	router, _ := setupRouter(t)

	input := submittableInput()
	input.Photos = nil

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", input)
	if w.Code != http.StatusCreated {
		t.Fatalf("blocked submission is a normal outcome, status = %d", w.Code)
	}
	if resp.ChangeOrder.SubmissionStatus != models.SubmissionBlocked {
		t.Errorf("submission status = %s, want BLOCKED", resp.ChangeOrder.SubmissionStatus)
	}
	if len(resp.ChangeOrder.BlockingReasons) == 0 {
		t.Error("blocked submission must report reasons")
	}
}

func TestSaveDraftEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/change-orders/draft",
		models.ChangeOrderInput{ProjectID: "PRJ-7"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if resp.ChangeOrder.SubmissionStatus != models.SubmissionDraft {
		t.Errorf("submission status = %s, want DRAFT", resp.ChangeOrder.SubmissionStatus)
	}
}

func TestGetChangeOrderNotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/v1/change-orders/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestApproveDecisionSendsEmail(t *testing.T) {
	router, _ := setupRouter(t)
	calls := stubMailer(t, config.MailResult{Mode: "test"}, nil)

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", submittableInput())

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/team/queue/"+created.ChangeOrder.ID+"/decision", gin.H{
		"action":          "approve",
		"decided_by":      "pm@example.com",
		"approved_amount": 415.5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !resp.ChangeOrder.IsFinalized {
		t.Error("approve must finalize")
	}
	if resp.ChangeOrder.DecisionEmailStatus != models.EmailSent {
		t.Errorf("email status = %s, want SENT", resp.ChangeOrder.DecisionEmailStatus)
	}
	if resp.ChangeOrder.DecisionEmailMode != "test" {
		t.Errorf("email mode = %q", resp.ChangeOrder.DecisionEmailMode)
	}
	if *calls != 1 {
		t.Errorf("mailer called %d times, want 1", *calls)
	}
}

func TestApproveTwiceDoesNotResend(t *testing.T) {
	router, _ := setupRouter(t)
	calls := stubMailer(t, config.MailResult{Mode: "test"}, nil)

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", submittableInput())
	path := "/api/v1/team/queue/" + created.ChangeOrder.ID + "/decision"

	doJSON(t, router, http.MethodPost, path, gin.H{
		"action": "approve", "decided_by": "pm", "approved_amount": 100,
	})
	w, resp := doJSON(t, router, http.MethodPost, path, gin.H{
		"action": "approve", "decided_by": "someone-else", "approved_amount": 999,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("repeat decision must be a silent no-op, status = %d", w.Code)
	}
	if *resp.ChangeOrder.ApprovedAmount != 100 {
		t.Errorf("approved amount = %v, want the original 100", *resp.ChangeOrder.ApprovedAmount)
	}
	if *calls != 1 {
		t.Errorf("mailer called %d times, want 1", *calls)
	}
}

func TestDecisionEmailFailureIsRecorded(t *testing.T) {
	router, _ := setupRouter(t)
	stubMailer(t, config.MailResult{Mode: "smtp"}, errors.New("connection refused"))

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", submittableInput())

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/team/queue/"+created.ChangeOrder.ID+"/decision", gin.H{
		"action": "deny", "decided_by": "pm", "denial_reason_code": "DUPLICATE_REQUEST",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("delivery failure must not fail the decision, status = %d", w.Code)
	}
	if !resp.ChangeOrder.IsFinalized || resp.ChangeOrder.DecisionStatus != models.DecisionDenied {
		t.Error("decision must stand regardless of delivery outcome")
	}
	if resp.ChangeOrder.DecisionEmailStatus != models.EmailFailed {
		t.Errorf("email status = %s, want FAILED", resp.ChangeOrder.DecisionEmailStatus)
	}
	if resp.ChangeOrder.DecisionEmailError != "connection refused" {
		t.Errorf("email error = %q", resp.ChangeOrder.DecisionEmailError)
	}
}

func TestInvalidContractorEmailShortCircuits(t *testing.T) {
	router, _ := setupRouter(t)
	calls := stubMailer(t, config.MailResult{Mode: "test"}, nil)

	input := submittableInput()
	input.ContractorEmail = "dana..fields@example.com"
	_, created := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", input)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/team/queue/"+created.ChangeOrder.ID+"/decision", gin.H{
		"action": "approve", "decided_by": "pm", "approved_amount": 100,
	})
	if resp.ChangeOrder.DecisionEmailStatus != models.EmailFailed {
		t.Errorf("email status = %s, want FAILED", resp.ChangeOrder.DecisionEmailStatus)
	}
	if *calls != 0 {
		t.Errorf("mailer must not be called for an invalid address, got %d calls", *calls)
	}
}

func TestLateApprovalRequiresAcknowledgment(t *testing.T) {
	router, st := setupRouter(t)
	stubMailer(t, config.MailResult{Mode: "test"}, nil)

	// Seed a record that was submitted on time but whose work has since
	// crossed the 24-hour line.
	rec := &models.StoredChangeOrder{
		ID:               "late-co",
		SubmissionStatus: models.SubmissionSubmitted,
		TeamStatus:       models.TeamStatusNew,
		DecisionStatus:   models.DecisionPending,
		ChangeOrderInput: models.ChangeOrderInput{
			ProjectID:       "PRJ-7",
			ContractorName:  "Dana Fields",
			ContractorEmail: "dana@example.com",
			WorkPerformedAt: time.Now().Add(-30 * time.Hour).Format(time.RFC3339),
		},
	}
	if err := st.Create(rec); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/team/queue/late-co/decision", gin.H{
		"action": "approve", "decided_by": "pm", "approved_amount": 100,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 without acknowledge_late", w.Code)
	}

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/team/queue/late-co/decision", gin.H{
		"action": "approve", "decided_by": "pm", "approved_amount": 100, "acknowledge_late": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !resp.ChangeOrder.IsFinalized {
		t.Error("acknowledged late approval must finalize")
	}
}

func TestNeedsInfoWithoutChecklistRejected(t *testing.T) {
	router, _ := setupRouter(t)
	stubMailer(t, config.MailResult{Mode: "test"}, nil)

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", submittableInput())

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/team/queue/"+created.ChangeOrder.ID+"/decision", gin.H{
		"action": "needs_info", "decided_by": "pm",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestApproveDraftConflicts(t *testing.T) {
	router, _ := setupRouter(t)
	stubMailer(t, config.MailResult{Mode: "test"}, nil)

	_, draft := doJSON(t, router, http.MethodPost, "/api/v1/change-orders/draft", submittableInput())

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/team/queue/"+draft.ChangeOrder.ID+"/decision", gin.H{
		"action": "approve", "decided_by": "pm", "approved_amount": 100,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for approve on a draft", w.Code)
	}
}

func TestUpdateQueueItemInvalidStatus(t *testing.T) {
	router, _ := setupRouter(t)

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", submittableInput())

	w, _ := doJSON(t, router, http.MethodPatch, "/api/v1/team/queue/"+created.ChangeOrder.ID, gin.H{
		"team_status": "SHIPPED",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestEmailDeliveryEndpointLastWriteWins(t *testing.T) {
	router, _ := setupRouter(t)
	stubMailer(t, config.MailResult{Mode: "test"}, nil)

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/change-orders", submittableInput())
	doJSON(t, router, http.MethodPost, "/api/v1/team/queue/"+created.ChangeOrder.ID+"/decision", gin.H{
		"action": "approve", "decided_by": "pm", "approved_amount": 100,
	})

	path := "/api/v1/team/queue/" + created.ChangeOrder.ID + "/email-delivery"
	doJSON(t, router, http.MethodPost, path, gin.H{"status": "FAILED", "error": "bounced"})
	w, resp := doJSON(t, router, http.MethodPost, path, gin.H{"status": "SENT", "mode": "smtp"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.ChangeOrder.DecisionEmailStatus != models.EmailSent {
		t.Errorf("email status = %s, want the latest report (SENT)", resp.ChangeOrder.DecisionEmailStatus)
	}
	if resp.ChangeOrder.DecisionEmailError != "" {
		t.Errorf("error from the earlier report must be overwritten, got %q", resp.ChangeOrder.DecisionEmailError)
	}
}
