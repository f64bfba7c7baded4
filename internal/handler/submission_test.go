package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/codespace/internal/apperror"
	"github.com/sakif/codespace/internal/model"
)

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleSaveCode(t *testing.T) {
	stack := newTestStack(t, &fakeAnalyzer{})
	cookie := stack.sessionCookie(t, stack.seedUser(t, "alice", "pw", false))

	req := postJSON("/save-code", `{"code":"print(1)"}`)
	req.AddCookie(cookie)
	rr := stack.do(req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Code saved successfully"}`, rr.Body.String())
}

func TestHandleSaveCode_EmptyCode(t *testing.T) {
	stack := newTestStack(t, &fakeAnalyzer{})
	cookie := stack.sessionCookie(t, stack.seedUser(t, "alice", "pw", false))

	req := postJSON("/save-code", `{"code":"   "}`)
	req.AddCookie(cookie)
	rr := stack.do(req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSaveCode_Unauthenticated(t *testing.T) {
	stack := newTestStack(t, &fakeAnalyzer{})

	rr := stack.do(postJSON("/save-code", `{"code":"print(1)"}`))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, rr.Body.String())
}

func TestHandleAnalyzeCode(t *testing.T) {
	stack := newTestStack(t, &fakeAnalyzer{feedback: "Use a loop here."})
	user := stack.seedUser(t, "alice", "pw", false)
	cookie := stack.sessionCookie(t, user)

	req := postJSON("/analyze-code", `{"code":"x=1\ny=2"}`)
	req.AddCookie(cookie)
	rr := stack.do(req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"feedback":"Use a loop here."}`, rr.Body.String())

	// The code and its feedback were persisted together.
	subs, err := stack.db.ListByUser(context.Background(), user.ID)
	assert.NoError(t, err)
	if assert.Len(t, subs, 1) {
		assert.Equal(t, "x=1\ny=2", subs[0].CodeContent)
		if assert.NotNil(t, subs[0].AnalysisResult) {
			assert.Equal(t, "Use a loop here.", *subs[0].AnalysisResult)
		}
	}
}

func TestHandleAnalyzeCode_UpstreamFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{
		err: apperror.Upstream("Failed to analyze code: feedback service unavailable", errors.New("timeout")),
	}
	stack := newTestStack(t, analyzer)
	user := stack.seedUser(t, "alice", "pw", false)
	cookie := stack.sessionCookie(t, user)

	req := postJSON("/analyze-code", `{"code":"x=1"}`)
	req.AddCookie(cookie)
	rr := stack.do(req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to analyze code: feedback service unavailable"}`, rr.Body.String())

	// All-or-nothing: a failed analysis must leave no row behind.
	subs, err := stack.db.ListByUser(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Empty(t, subs)
}

func TestHandleGetSavedCode(t *testing.T) {
	stack := newTestStack(t, &fakeAnalyzer{})
	alice := stack.seedUser(t, "alice", "pw", false)
	bob := stack.seedUser(t, "bob", "pw", false)
	cookie := stack.sessionCookie(t, alice)

	save := func(c *http.Cookie, code string) {
		req := postJSON("/save-code", `{"code":"`+code+`"}`)
		req.AddCookie(c)
		assert.Equal(t, http.StatusOK, stack.do(req).Code)
		time.Sleep(5 * time.Millisecond)
	}
	save(cookie, "first")
	save(cookie, "second")
	save(stack.sessionCookie(t, bob), "bobs code")

	req := httptest.NewRequest(http.MethodGet, "/get-saved-code", nil)
	req.AddCookie(cookie)
	rr := stack.do(req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		Success bool               `json:"success"`
		Codes   []model.Submission `json:"codes"`
	}
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.True(t, res.Success)

	// Only alice's rows, newest first.
	if assert.Len(t, res.Codes, 2) {
		assert.Equal(t, "second", res.Codes[0].CodeContent)
		assert.Equal(t, "first", res.Codes[1].CodeContent)
	}
}

func TestHandleGetCode_OwnerAndStranger(t *testing.T) {
	stack := newTestStack(t, &fakeAnalyzer{})
	alice := stack.seedUser(t, "alice", "pw", false)
	bob := stack.seedUser(t, "bob", "pw", false)
	aliceCookie := stack.sessionCookie(t, alice)

	sub := &model.Submission{UserID: alice.ID, CodeContent: "print(1)"}
	assert.NoError(t, stack.db.Create(context.Background(), sub))

	req := httptest.NewRequest(http.MethodGet, "/get-code/"+sub.ID, nil)
	req.AddCookie(aliceCookie)
	rr := stack.do(req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		Success bool              `json:"success"`
		Code    *model.Submission `json:"code"`
	}
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.True(t, res.Success)
	if assert.NotNil(t, res.Code) {
		assert.Equal(t, sub.ID, res.Code.ID)
	}

	// A stranger gets a 404, never a 403 — the id must not be confirmed.
	req = httptest.NewRequest(http.MethodGet, "/get-code/"+sub.ID, nil)
	req.AddCookie(stack.sessionCookie(t, bob))
	assert.Equal(t, http.StatusNotFound, stack.do(req).Code)
}

func TestHandleDeleteCode(t *testing.T) {
	stack := newTestStack(t, &fakeAnalyzer{})
	alice := stack.seedUser(t, "alice", "pw", false)
	bob := stack.seedUser(t, "bob", "pw", false)
	admin := stack.seedUser(t, "teacher", "pw", true)

	seed := func() *model.Submission {
		sub := &model.Submission{UserID: alice.ID, CodeContent: "print(1)"}
		if err := stack.db.Create(context.Background(), sub); err != nil {
			t.Fatalf("seeding submission: %v", err)
		}
		return sub
	}

	// A non-owner cannot delete: 403 with the original message.
	sub := seed()
	req := httptest.NewRequest(http.MethodDelete, "/delete-code/"+sub.ID, nil)
	req.AddCookie(stack.sessionCookie(t, bob))
	rr := stack.do(req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"Not authorized to delete this code"}`, rr.Body.String())

	// The owner can.
	req = httptest.NewRequest(http.MethodDelete, "/delete-code/"+sub.ID, nil)
	req.AddCookie(stack.sessionCookie(t, alice))
	rr = stack.do(req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	// Deleting the same id again is a 403, same as a missing id.
	req = httptest.NewRequest(http.MethodDelete, "/delete-code/"+sub.ID, nil)
	req.AddCookie(stack.sessionCookie(t, alice))
	assert.Equal(t, http.StatusForbidden, stack.do(req).Code)

	// Admins delete anyone's rows.
	sub = seed()
	req = httptest.NewRequest(http.MethodDelete, "/delete-code/"+sub.ID, nil)
	req.AddCookie(stack.sessionCookie(t, admin))
	assert.Equal(t, http.StatusOK, stack.do(req).Code)
}
