package validators

import "go.mongodb.org/mongo-driver/bson"

var ItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"owner_name",
			"owner_email",
			"name",
			"daily_price_cents",
			"availability",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"owner_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"owner_email": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"daily_price_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"availability": bson.M{
				"bsonType": "object",
				"required": []string{"type"},
				"properties": bson.M{
					"type": bson.M{
						"bsonType": "string",
						"enum": []string{
							"always",
							"dateRange",
							"recurring",
						},
					},
					"start_date": bson.M{
						"bsonType": "date",
					},
					"end_date": bson.M{
						"bsonType": "date",
					},
					"days_of_week": bson.M{
						"bsonType": "array",
						"items": bson.M{
							"bsonType": "int",
							"minimum":  0,
							"maximum":  6,
						},
					},
				},
			},

			"handover_start": bson.M{
				"bsonType": "string",
			},

			"handover_end": bson.M{
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
