/*
Package security provides transport security (TLS/mTLS), secret management,
and authentication for the screen-memory evidence engine.

# TLS Configuration

Configure TLS for the query server:

	cfg := &tls.Config{
		Enabled:  true,
		CertFile: "/etc/screenrecall/certs/server.crt",
		KeyFile:  "/etc/screenrecall/certs/server.key",
		MinVersion: "1.3",
	}

	tlsConfig, err := cfg.ToTLSConfig()
	if err != nil {
		log.Fatal(err)
	}

# Secret Management

Load secrets from multiple providers:

	fileProvider, err := secrets.NewFileProvider("/var/secrets", true)
	if err != nil {
		log.Fatal(err)
	}
	manager := secrets.NewManager([]secrets.SecretProvider{
		secrets.NewEnvProvider("SCREENRECALL_SECRET_"),
		fileProvider,
	}, cacheConfig)

	apiKey, err := manager.GetSecret(ctx, "ocr-tesseract-api-key")
	if err != nil {
		log.Fatal(err)
	}
*/
package security
