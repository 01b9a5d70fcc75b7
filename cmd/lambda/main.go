// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command lambda serves the local translation service (the POST /api/translate
// contract) as an AWS Lambda function behind an HTTP API.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/audit"
	"codeberg.org/plae/plae/core/translator"
	"codeberg.org/plae/plae/i18n"
)

func main() {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	h := &handler{translator: translator.NewGemini(&config.Global)}

	lambda.Start(h.handleRequest)
}

type handler struct {
	translator translator.Translator
}

// handleRequest answers warmup pings directly and everything else as an
// HTTP API request.
func (h *handler) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	// warmup pings carry no HTTP request
	if gjson.GetBytes(event, "warmup").Bool() {
		return map[string]string{"status": "warm"}, nil
	}

	var req events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	return h.translate(ctx, req), nil
}

func (h *handler) translate(ctx context.Context, req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	var reply translator.ServiceReply

	body, err := requestBody(req)
	if err != nil {
		reply = translator.ReplyError(http.StatusBadRequest, i18n.Tr(ctx, "Could not read the request body."), err)
	} else {
		reply = translator.ServeServiceRequest(ctx, h.translator, body)
	}

	if reply.Err != nil {
		log.Warn().
			Err(reply.Err).
			Int("status", reply.StatusCode).
			Str("request_id", req.RequestContext.RequestID).
			Msg("Translation request failed")
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: reply.StatusCode,
		Headers: map[string]string{
			"Content-Type":  reply.ContentType,
			"Cache-Control": "no-store",
		},
		Body: string(reply.Body),
	}
}

// requestBody is the raw body of req. API Gateway base64 encodes bodies it
// does not consider text.
func requestBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}

	return base64.StdEncoding.DecodeString(req.Body)
}
