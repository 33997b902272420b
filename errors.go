package sealsession

import "errors"

var (
	// ErrNilRequest is an exported constant or variable used by the session store.
	ErrNilRequest = errors.New("sealsession: nil request handle")
	// ErrNilResponse is an exported constant or variable used by the session store.
	ErrNilResponse = errors.New("sealsession: nil response handle")
	// ErrNilSession is an exported constant or variable used by the session store.
	ErrNilSession = errors.New("sealsession: nil session")
	// ErrStoreNotReady is an exported constant or variable used by the session store.
	ErrStoreNotReady = errors.New("sealsession: store not built")
)
