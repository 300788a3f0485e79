package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type entry struct {
	mu     sync.Mutex
	loaded bool
	value  any
}

var (
	entries sync.Map // reflect.Type -> *entry

	dotenvOnce sync.Once
	dotenvPath = ".env"
)

// Load fills v from the environment. The first call reads .env from the
// working directory when it exists; variables already set in the process win.
//
// Each struct type is parsed once. Later calls for the same type copy the
// cached value into v. A failed parse is not cached, so the next call retries.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() { _ = godotenv.Load(dotenvPath) })

	e := lookup(reflect.TypeFor[T]())
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		*v = e.value.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	e.value, e.loaded = parsed, true
	*v = parsed
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %T: %v", *v, err))
	}
}

func lookup(t reflect.Type) *entry {
	if e, ok := entries.Load(t); ok {
		return e.(*entry)
	}
	e, _ := entries.LoadOrStore(t, &entry{})
	return e.(*entry)
}

// reset drops every cached value. Tests only.
func reset() {
	entries.Range(func(k, _ any) bool {
		entries.Delete(k)
		return true
	})
}
