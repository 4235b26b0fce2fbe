package controllers

import (
	"go-restaurant-booking/database"
	"go-restaurant-booking/services"
)

// The concurrency core is wired once, at package init, the same way the
// collections are. Every handler shares these instances.
var lockService = services.NewLockService(database.NewMongoLockStore())
var stockService = services.NewStockService(database.NewMongoStockStore())
var bookingService = services.NewBookingService(lockService, stockService, database.NewMongoBookingStore(), hub)
var sweeper = services.NewSweeper(lockService, stockService, database.NewMongoSweepStore(), hub)
