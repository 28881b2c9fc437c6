// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import "github.com/pkg/errors"

var (
	// ErrMatchingPrecondition signals a malformed order, such as a zero
	// amount used as a price denominator or an amount overflowing the
	// fixed point arithmetic.
	ErrMatchingPrecondition = errors.New("matching precondition violated")
	// ErrKeyUnavailable is returned when the operator key cannot be
	// loaded. The operator abstains for the round.
	ErrKeyUnavailable = errors.New("key unavailable")
	// ErrConflictingProposal is raised when an operator signs two
	// different responses for the same task.
	ErrConflictingProposal = errors.New("conflicting proposal")
	// ErrQuorumTimeout is reported when a task is evicted before reaching
	// quorum.
	ErrQuorumTimeout = errors.New("quorum timeout")
	// ErrSubmissionFailure wraps errors returned by the chain sink.
	ErrSubmissionFailure = errors.New("submission failure")
	ErrUnknownTask       = errors.New("unknown task")
	ErrUnknownOperator   = errors.New("unknown operator")
	ErrInvalidSignature  = errors.New("invalid signature")
)
