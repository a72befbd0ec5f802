package interpretation

import "errors"

// errInvalidReservation signals that a reservation's recorded indices no
// longer match the slab it is being committed against (e.g. the slab was
// mutated by another committed reservation in between). The core never
// triggers this in single-threaded use; it exists as a hard invariant
// check.
var errInvalidReservation = errors.New("interpretation: invalid reservation")
