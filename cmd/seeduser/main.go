// Crea o actualiza el usuario ADMIN inicial.
// Uso: go run ./cmd/seeduser -username admin -email admin@tienda.com -password secreto123
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"stockmaster/internal/config"
	"stockmaster/internal/infra"
	"stockmaster/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "admin", "nombre de usuario")
	email := flag.String("email", "admin@stockmaster.local", "email")
	password := flag.String("password", "", "password (min. 8 caracteres)")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password es obligatorio y debe tener al menos 8 caracteres")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(cfg.Env, cfg.LogLevel)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (username, email, password_hash, rol)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    email = EXCLUDED.email,
		    rol = EXCLUDED.rol,
		    activo = true,
		    updated_at = NOW()
	`, strings.TrimSpace(*username), strings.ToLower(strings.TrimSpace(*email)), string(hash), model.RolAdmin)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert error")
	}
	fmt.Printf("Usuario ADMIN '%s' creado/actualizado\n", *username)
}
