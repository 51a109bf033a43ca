package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"item_id",
			"date",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			// Deterministic lock key: "<item_id>_<YYYY-MM-DD>".
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  `_\d{4}-\d{2}-\d{2}$`,
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"item_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"owner_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
