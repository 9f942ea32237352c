package main

// @title           Verdulería API
// @version         1.0
// @description     Sesiones de compra diaria, lotes, precios de venta y promociones de la verdulería.

// @contact.name   Soporte
// @contact.email  soporte@verduleria.local

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Token JWT con el esquema Bearer. Ejemplo: "Bearer {token}"
