// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware chain of Plae and CatchError,
which turns handler errors into error pages.

The chain itself is assembled in router.RegisterMiddleware.
*/
package middleware
