package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"item_id",
			"renter_id",
			"owner_id",
			"start_date",
			"end_date",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"item_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"item_name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"renter_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"renter_name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"renter_email": bson.M{
				"bsonType": "string",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"owner_name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"owner_email": bson.M{
				"bsonType": "string",
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"accepted",
					"declined",
					"archived",
					// Legacy label, rewritten by the status migration.
					"confirmed",
				},
			},

			"status_history": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"status", "at", "by"},
					"properties": bson.M{
						"status": bson.M{"bsonType": "string"},
						"at":     bson.M{"bsonType": "date"},
						"by":     bson.M{"bsonType": "string"},
					},
				},
			},

			"lock_ids": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"idempotency_key": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
