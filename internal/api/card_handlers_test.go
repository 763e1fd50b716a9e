package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

type cardPayload struct {
	ID         string `json:"id"`
	CardNumber string `json:"card_number"`
	PlayerName string `json:"player_name"`
	Status     string `json:"status"`
}

func TestAddCardEndpoint(t *testing.T) {
	server := setupTestServer(t)
	setID := createTestSet(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets/"+setID+"/cards", map[string]any{
		"card_number": "336",
		"player_name": "José Ramírez",
		"team":        "Cleveland Guardians",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var card cardPayload
	decodeData(t, rec, &card)
	assert.Equal(t, "Jose Ramirez", card.PlayerName)
	assert.Equal(t, string(domain.StatusNeed), card.Status)

	// Duplicate rejected with 409.
	rec = doRequest(t, server, http.MethodPost, "/api/v1/sets/"+setID+"/cards", map[string]any{
		"card_number": "336",
		"player_name": "jose ramirez",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEditCardEndpoint(t *testing.T) {
	server := setupTestServer(t)
	setID := createTestSet(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets/"+setID+"/cards", map[string]any{
		"card_number": "577",
		"player_name": "Trevor Story",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var card cardPayload
	decodeData(t, rec, &card)

	rec = doRequest(t, server, http.MethodPatch, "/api/v1/cards/"+card.ID, map[string]any{
		"status":       "owned",
		"serial_owned": "17/50",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated struct {
		Status      string `json:"status"`
		SerialOwned string `json:"serial_owned"`
	}
	decodeData(t, rec, &updated)
	assert.Equal(t, "owned", updated.Status)
	assert.Equal(t, "17/50", updated.SerialOwned)
}

func TestCaptureSerialEndpoint(t *testing.T) {
	server := setupTestServer(t)
	setID := createTestSet(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets/"+setID+"/cards", map[string]any{
		"card_number": "577",
		"player_name": "Trevor Story",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var card cardPayload
	decodeData(t, rec, &card)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/cards/"+card.ID+"/serial", map[string]any{
		"serial_owned": "3/25",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated struct {
		Status      string `json:"status"`
		SerialOwned string `json:"serial_owned"`
	}
	decodeData(t, rec, &updated)
	assert.Equal(t, "owned", updated.Status)
	assert.Equal(t, "3/25", updated.SerialOwned)
}

func TestEditCardEndpoint_BadStatus(t *testing.T) {
	server := setupTestServer(t)
	setID := createTestSet(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets/"+setID+"/cards", map[string]any{
		"card_number": "577",
		"player_name": "Trevor Story",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var card cardPayload
	decodeData(t, rec, &card)

	rec = doRequest(t, server, http.MethodPatch, "/api/v1/cards/"+card.ID, map[string]any{
		"status": "misplaced",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCardsEndpoint(t *testing.T) {
	server := setupTestServer(t)
	setID := createTestSet(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets/"+setID+"/cards", map[string]any{
		"card_number": "577",
		"player_name": "Trevor Story",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var card cardPayload
	decodeData(t, rec, &card)

	rec = doRequest(t, server, http.MethodDelete, "/api/v1/sets/"+setID+"/cards", map[string]any{
		"card_ids": []string{card.ID},
	}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/sets/"+setID+"/cards", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Groups []struct {
			Base []cardPayload `json:"base"`
		} `json:"groups"`
	}
	decodeData(t, rec, &list)
	require.Len(t, list.Groups, 1)
	assert.Empty(t, list.Groups[0].Base)
}

func TestListCardsEndpoint_Filters(t *testing.T) {
	server := setupTestServer(t)
	setID := createTestSet(t, server)
	importCards(t, server, setID)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets/"+setID+"/bulk-status", map[string]any{
		"text":   "577",
		"status": "owned",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Status filter.
	rec = doRequest(t, server, http.MethodGet, "/api/v1/sets/"+setID+"/cards?status=owned", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Groups []struct {
			Base []cardPayload `json:"base"`
		} `json:"groups"`
	}
	decodeData(t, rec, &list)
	require.Len(t, list.Groups, 1)
	require.Len(t, list.Groups[0].Base, 1)
	assert.Equal(t, "577", list.Groups[0].Base[0].CardNumber)

	// Search suspends the status filter.
	rec = doRequest(t, server, http.MethodGet, "/api/v1/sets/"+setID+"/cards?status=owned&q=trout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &list)
	require.Len(t, list.Groups, 1)
	require.Len(t, list.Groups[0].Base, 1)
	assert.Equal(t, "Mike Trout", list.Groups[0].Base[0].PlayerName)
}

func TestRainbowEndpoints(t *testing.T) {
	server := setupTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets", map[string]any{
		"name":     "2023 Prizm Luka Rainbow",
		"year":     2023,
		"brand":    "Panini",
		"set_type": "rainbow",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var set struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &set)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/sets/"+set.ID+"/cards", map[string]any{
		"card_number": "75",
		"player_name": "Luka Doncic",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/sets/"+set.ID+"/import/rainbow", map[string]any{
		"text": "Silver\nGold – /10\nBlack – 1/1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Inserted int `json:"inserted"`
	}
	decodeData(t, rec, &report)
	assert.Equal(t, 3, report.Inserted)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/sets/"+set.ID+"/parallels", map[string]any{
		"parallel":           "Blue",
		"parallel_print_run": "199",
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Rainbow sets reject checklist imports.
	rec = doRequest(t, server, http.MethodPost, "/api/v1/sets/"+set.ID+"/import", map[string]any{
		"text": "1 Player - Team",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeYearEndpoint(t *testing.T) {
	server := setupTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sets", map[string]any{
		"name":     "Topps Silver Pack Chrome",
		"brand":    "Topps",
		"set_type": "multi_year_insert",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var set struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &set)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/sets/"+set.ID+"/import", map[string]any{
		"text": "1 Mike Trout - Angels",
		"year": 2019,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/sets/"+set.ID+"/year", map[string]any{
		"from_year": 2019,
		"to_year":   2020,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]int
	decodeData(t, rec, &result)
	assert.Equal(t, 1, result["changed"])
}
