package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"
)

// Key layout. Records are never deleted, so Save only upserts.
var (
	metaKey            = []byte{0x01}
	gamePrefix         = []byte{0x02}
	requestPrefix      = []byte{0x03}
	withdrawablePrefix = []byte{0x04}
	accountPrefix      = []byte{0x05}
	accountKeyPrefix   = []byte{0x06}
	noncePrefix        = []byte{0x07}
)

const dbName = "orps"

// meta is every scalar field of State, stored under a single key.
type meta struct {
	Height         int64  `json:"height"`
	Time           int64  `json:"time"`
	NextGameID     uint64 `json:"nextGameId"`
	NextRequestSeq uint64 `json:"nextRequestSeq"`
	Params         Params `json:"params"`
	Owner          string `json:"owner"`
	Paused         bool   `json:"paused"`
	FeesCollected  uint64 `json:"feesCollected"`
	FaucetEnabled  bool   `json:"faucetEnabled,omitempty"`
	OraclePubKey   []byte `json:"oraclePubKey,omitempty"`
	Contract       string `json:"contract,omitempty"`
}

// Store persists State in a cosmos-db key/value database.
type Store struct {
	db dbm.DB
}

// OpenStore opens (or creates) the goleveldb database under <home>/data.
func OpenStore(home string) (*Store, error) {
	dir := filepath.Join(home, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir data: %w", err)
	}
	db, err := dbm.NewDB(dbName, dbm.GoLevelDBBackend, dir)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &Store{db: db}, nil
}

func NewMemStore() *Store {
	return &Store{db: dbm.NewMemDB()}
}

func NewStore(db dbm.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func u64be(x uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], x)
	return b[:]
}

func prefixed(prefix []byte, key []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(key))
	out = append(out, prefix...)
	return append(out, key...)
}

// prefixEnd returns the exclusive upper bound for iterating prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Load reads the full state. An empty database yields NewState().
func (s *Store) Load() (*State, error) {
	raw, err := s.db.Get(metaKey)
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	st := NewState()
	if raw == nil {
		return st, nil
	}
	var m meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	st.Height, st.Time = m.Height, m.Time
	st.NextGameID, st.NextRequestSeq = m.NextGameID, m.NextRequestSeq
	st.Params, st.Owner, st.Paused = m.Params, m.Owner, m.Paused
	st.FeesCollected, st.FaucetEnabled, st.OraclePubKey = m.FeesCollected, m.FaucetEnabled, m.OraclePubKey
	st.Contract = m.Contract

	err = s.each(gamePrefix, func(_ []byte, v []byte) error {
		var g Game
		if err := json.Unmarshal(v, &g); err != nil {
			return fmt.Errorf("decode game: %w", err)
		}
		st.Games[g.ID] = &g
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = s.each(requestPrefix, func(_ []byte, v []byte) error {
		var r DecryptionRequest
		if err := json.Unmarshal(v, &r); err != nil {
			return fmt.Errorf("decode request: %w", err)
		}
		st.Requests[r.CorrelationID] = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, tbl := range []struct {
		prefix []byte
		into   map[string]uint64
	}{
		{withdrawablePrefix, st.Withdrawable},
		{accountPrefix, st.Accounts},
		{noncePrefix, st.NonceMax},
	} {
		into := tbl.into
		err = s.each(tbl.prefix, func(k []byte, v []byte) error {
			if len(v) != 8 {
				return fmt.Errorf("bad u64 value for %q", k)
			}
			into[string(k)] = binary.BigEndian.Uint64(v)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	err = s.each(accountKeyPrefix, func(k []byte, v []byte) error {
		st.AccountKeys[string(k)] = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	st.normalize()
	return st, nil
}

// each iterates every record under prefix, passing the key with the prefix
// stripped.
func (s *Store) each(prefix []byte, fn func(k []byte, v []byte) error) error {
	it, err := s.db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		k := append([]byte(nil), it.Key()[len(prefix):]...)
		v := append([]byte(nil), it.Value()...)
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return it.Error()
}

// Save writes the full state as one atomic batch.
func (s *Store) Save(st *State) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	m := meta{
		Height:         st.Height,
		Time:           st.Time,
		NextGameID:     st.NextGameID,
		NextRequestSeq: st.NextRequestSeq,
		Params:         st.Params,
		Owner:          st.Owner,
		Paused:         st.Paused,
		FeesCollected:  st.FeesCollected,
		FaucetEnabled:  st.FaucetEnabled,
		OraclePubKey:   st.OraclePubKey,
		Contract:       st.Contract,
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := batch.Set(metaKey, raw); err != nil {
		return err
	}
	for id, g := range st.Games {
		raw, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encode game %d: %w", id, err)
		}
		if err := batch.Set(prefixed(gamePrefix, u64be(id)), raw); err != nil {
			return err
		}
	}
	for cid, r := range st.Requests {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode request %s: %w", cid, err)
		}
		if err := batch.Set(prefixed(requestPrefix, []byte(cid)), raw); err != nil {
			return err
		}
	}
	for _, tbl := range []struct {
		prefix []byte
		from   map[string]uint64
	}{
		{withdrawablePrefix, st.Withdrawable},
		{accountPrefix, st.Accounts},
		{noncePrefix, st.NonceMax},
	} {
		for k, v := range tbl.from {
			if err := batch.Set(prefixed(tbl.prefix, []byte(k)), u64be(v)); err != nil {
				return err
			}
		}
	}
	for k, v := range st.AccountKeys {
		if err := batch.Set(prefixed(accountKeyPrefix, []byte(k)), v); err != nil {
			return err
		}
	}
	return batch.WriteSync()
}
