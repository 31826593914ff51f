// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mapping

import "errors"

// ErrInvalidBitOffset is returned when a bit offset falls outside the 16 bits
// of a holding register. For computed offsets it means the layout table is
// broken, callers should abort rather than recover.
var ErrInvalidBitOffset = errors.New("invalid bit offset")
