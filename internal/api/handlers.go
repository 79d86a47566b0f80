// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ManuGH/textfeature/internal/feature"
	"github.com/ManuGH/textfeature/internal/keyword"
	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/morph"
	"github.com/ManuGH/textfeature/internal/pattern"
	"github.com/ManuGH/textfeature/internal/ratelimit"
)

type textRequest struct {
	Text string `json:"text"`
}

type filenameRequest struct {
	Filename string `json:"filename"`
}

type batchRequest struct {
	Documents []feature.Document `json:"documents"`
}

type wordsRequest struct {
	Words []string `json:"words"`
}

// KeywordsResponse is returned by /keywords.
type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

// RegexResponse is returned by /regex.
type RegexResponse struct {
	Regex pattern.Matches `json:"regex"`
}

// TokensResponse is returned by /filename-tokens.
type TokensResponse struct {
	Tokens []string `json:"tokens"`
}

// BatchResponse is returned by /batch.
type BatchResponse struct {
	Results []keyword.Result `json:"results"`
}

// DictionaryResponse is returned by GET /dictionary.
type DictionaryResponse struct {
	Entries    []morph.Entry `json:"entries"`
	Generation uint64        `json:"generation"`
}

// DictionaryUpdateResponse is returned by POST /dictionary.
type DictionaryUpdateResponse struct {
	Added      int    `json:"added"`
	Size       int    `json:"size"`
	Generation uint64 `json:"generation"`
}

// DictionaryStateResponse is returned by POST /dictionary/reload.
type DictionaryStateResponse struct {
	Size       int    `json:"size"`
	Generation uint64 `json:"generation"`
}

// decodeJSON decodes the request body into v and writes the error reply
// itself when that fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, CodeInvalidJSON, err.Error())
		return false
	}
	return true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func resultBody(r keyword.Result) keyword.Result {
	r.Nouns = nonNil(r.Nouns)
	return r
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(OpenAPISpec())
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var doc feature.Document
	if !decodeJSON(w, r, &doc) {
		return
	}
	res, err := s.svc.ExtractDocument(r.Context(), doc)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody(res))
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	kws, err := s.svc.UniqueKeywords(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, KeywordsResponse{Keywords: nonNil(kws)})
}

func (s *Server) handleRegex(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.svc.Regex(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RegexResponse{Regex: m})
}

func (s *Server) handleFilenameTokens(w http.ResponseWriter, r *http.Request) {
	var req filenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, TokensResponse{Tokens: nonNil(s.svc.FilenameTokens(req.Filename))})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if s.limiter != nil {
		client := ratelimit.GetClientIP(r)
		ok, wait := s.limiter.Allow(client, len(req.Documents))
		if !ok {
			if wait < 0 {
				writeError(w, http.StatusRequestEntityTooLarge, CodeBatchTooLarge,
					fmt.Sprintf("batch of %d documents exceeds the cost burst of %d", len(req.Documents), s.cfg.BatchCostBurst))
				return
			}
			logger := log.WithContext(r.Context(), s.logger)
			logger.Warn().
				Str(log.FieldEvent, "batch.rate_limited").
				Str(log.FieldRemoteAddr, client).
				Int(log.FieldDocuments, len(req.Documents)).
				Msg("batch rejected by cost limiter")
			w.Header().Set("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(wait)))
			writeError(w, http.StatusTooManyRequests, CodeRateLimited, "batch cost budget exhausted")
			return
		}
	}

	results, err := s.svc.ExtractBatch(r.Context(), req.Documents)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for i := range results {
		results[i] = resultBody(results[i])
	}
	writeJSON(w, http.StatusOK, BatchResponse{Results: nonNil(results)})
}

func (s *Server) handleDictionaryList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DictionaryResponse{
		Entries:    nonNil(s.svc.Words()),
		Generation: s.svc.Generation(),
	})
}

func (s *Server) handleDictionaryAdd(w http.ResponseWriter, r *http.Request) {
	var req wordsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	added, err := s.svc.AddWords(r.Context(), req.Words)
	if err != nil {
		if errors.Is(err, keyword.ErrPersist) {
			// entries are active even though the store rejected them
			logger := log.WithTraceContext(r.Context(), log.WithContext(r.Context(), s.logger))
			logger.Error().Err(err).Str(log.FieldEvent, "dictionary.persist_failed").Msg("dictionary not persisted")
			writeError(w, http.StatusInternalServerError, CodePersistFailed, err.Error())
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DictionaryUpdateResponse{
		Added:      added,
		Size:       len(s.svc.Words()),
		Generation: s.svc.Generation(),
	})
}

func (s *Server) handleDictionaryReload(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ReloadDictionary(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DictionaryStateResponse{
		Size:       len(s.svc.Words()),
		Generation: s.svc.Generation(),
	})
}
