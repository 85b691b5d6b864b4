package main

import (
	"log"
	"os"
	"songlin/internal/cache"
	"songlin/internal/db"
	"songlin/internal/router"
	"songlin/internal/services"
	"songlin/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// 查询缓存：进程里只有这一个实例，往下注入
	queryCache := cache.New(500)
	listing := services.NewListingService(store.New(db.DB), queryCache)

	// Initialize Gin
	r := gin.Default()

	router.RegisterRoutes(r, listing)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("SongLin server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
