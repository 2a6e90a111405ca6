// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import "errors"

var (
	ErrMessageNotInFlight   = errors.New("network: message id not found in the in-flight set")
	ErrOverlappingPartition = errors.New("network: validator already belongs to another partition")
	ErrUnknownPartition     = errors.New("network: no partition matches the given subset")
)
