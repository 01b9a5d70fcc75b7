// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package authenticated signs and verifies the tokens that protect form submissions.
package authenticated

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

// Implicit is the domain separation string. Changing it invalidates every token.
const Implicit = "Plae form token"

const (
	formSubject = "form"
	nonceClaim  = "nonce"
	nonceBytes  = 16

	// FormTokenTTL is how long a rendered form stays submittable.
	FormTokenTTL = 12 * time.Hour
)

var (
	errInvalidFormToken = errors.New("invalid form token")
	errNonceMismatch    = errors.New("form token does not belong to this browser")
)

var formParser = paseto.MakeParser([]paseto.Rule{
	paseto.NotExpired(),
	paseto.Subject(formSubject),
})

// NewSecretKeyHex generates a fresh hex encoded v4.public secret key.
func NewSecretKeyHex() string {
	return paseto.NewV4AsymmetricSecretKey().ExportHex()
}

// Validator signs v4.public tokens.
type Validator struct {
	SecretKey paseto.V4AsymmetricSecretKey
}

func (v *Validator) LoadSecretKeyFromHex(hex string) error {
	key, err := paseto.NewV4AsymmetricSecretKeyFromHex(hex)
	if err != nil {
		return fmt.Errorf("failed to load secret key: %w", err)
	}

	// the public key is derived from SecretKey when needed
	v.SecretKey = key

	return nil
}

// NewNonce returns a random value to be stored in a cookie and bound to form tokens.
func NewNonce() string {
	var b [nonceBytes]byte

	_, _ = rand.Read(b[:])

	return base64.RawURLEncoding.EncodeToString(b[:])
}

// SignFormToken returns a token, valid for FormTokenTTL, that is bound to nonce.
func (v *Validator) SignFormToken(nonce string) string {
	token := paseto.NewToken()
	token.SetIssuedAt(time.Now())
	token.SetExpiration(time.Now().Add(FormTokenTTL))
	token.SetSubject(formSubject)
	token.SetString(nonceClaim, nonce)

	return token.V4Sign(v.SecretKey, []byte(Implicit))
}

// VerifyFormToken checks that signed is an unexpired form token bound to nonce.
func (v *Validator) VerifyFormToken(signed, nonce string) error {
	token, err := formParser.ParseV4Public(v.SecretKey.Public(), signed, []byte(Implicit))
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidFormToken, err)
	}

	claimed, err := token.GetString(nonceClaim)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidFormToken, err)
	}

	if nonce == "" || subtle.ConstantTimeCompare([]byte(claimed), []byte(nonce)) != 1 {
		return errNonceMismatch
	}

	return nil
}
