package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar HTTP.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }

// Campos de dominio.

func Op(v string) zap.Field   { return zap.String("op", v) }
func Err(err error) zap.Field { return zap.Error(err) }

func UserID(v string) zap.Field     { return zap.String("user_id", v) }
func AppID(v string) zap.Field      { return zap.String("app_id", v) }
func IdentityID(v string) zap.Field { return zap.String("identity_id", v) }
func ConsentID(v string) zap.Field  { return zap.String("consent_id", v) }
func RequestRef(v string) zap.Field { return zap.String("consent_request_id", v) }
