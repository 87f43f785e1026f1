package database

import "go.mongodb.org/mongo-driver/mongo"

type MongodbDB struct {
	Client *mongo.Client
	DB     *mongo.Database
}
