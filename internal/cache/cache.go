// Package cache provee una abstracción mínima de cache con soporte
// multi-backend:
//
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// El session store la usa como backend de sesiones.
package cache

import "time"

// Cache define las operaciones de cache que usa el servicio.
type Cache interface {
	// Get obtiene un valor. ok es false si la key no existe o expiró.
	Get(k string) (v []byte, ok bool)

	// Set guarda un valor con TTL. Si ttl es 0 se usa el default del backend.
	Set(k string, v []byte, ttl time.Duration)

	// Delete elimina una key. No falla si no existe.
	Delete(k string)
}
