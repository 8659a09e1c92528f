package validators

import "go.mongodb.org/mongo-driver/bson"

var AnalyticsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"equipment_id",
			"rental_count",
			"total_revenue",
			"total_duration_days",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"equipment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"rental_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"total_revenue": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"total_duration_days": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"average_duration_days": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"last_rented": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
