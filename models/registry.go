/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import "github.com/tomoncle/aclimate/database"

// Registry returns every entity in table creation order: parents first.
func Registry() *database.ModelRegistry {
	return database.NewModelRegistry(
		database.Model((*Country)(nil), 10),
		database.Model((*Admin1)(nil), 20),
		database.Model((*Admin2)(nil), 30),
		database.Model((*Source)(nil), 30),
		database.Model((*Location)(nil), 40),
		database.Model((*ClimateMeasure)(nil), 30),
		database.Model((*IndicatorCategory)(nil), 30),
		database.Model((*Indicator)(nil), 40),
		database.Model((*Crop)(nil), 30),
		database.Model((*Role)(nil), 30),
		database.Model((*User)(nil), 40),
		database.Model((*Cultivar)(nil), 50),
		database.Model((*Soil)(nil), 50),
		database.Model((*CountryIndicator)(nil), 50),
		database.Model((*UserAccess)(nil), 50),
		database.Model((*ClimateHistoricalDaily)(nil), 60),
		database.Model((*ClimateHistoricalMonthly)(nil), 60),
		database.Model((*ClimateHistoricalClimatology)(nil), 60),
		database.Model((*ClimateHistoricalIndicator)(nil), 60),
	)
}
