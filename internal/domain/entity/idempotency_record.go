package entity

import "time"

// IdempotencyRecord resultado durable de la primera ejecución exitosa de una
// operación mutadora, indexado por (tenant, key). Un reintento con la misma
// clave devuelve Result sin re-ejecutar efectos.
type IdempotencyRecord struct {
	TenantID  string
	Key       string
	Operation string // apply_inbound, apply_outbound, post_landed_cost
	Result    []byte // respuesta original serializada en JSON
	CreatedAt time.Time
}
