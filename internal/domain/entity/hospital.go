package entity

import "time"

type Hospital struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Schedule    string     `gorm:"type:varchar(255)" json:"schedule"`
	LocationID  uint       `gorm:"not null" json:"location_id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`

	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

type Location struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Address  string   `gorm:"type:varchar(250)" json:"address"`
	Province Province `gorm:"type:varchar(50);not null" json:"province"`
}

func (Location) TableName() string {
	return "locations"
}

// Province is one of the fixed provinces of the Dominican Republic.
type Province string

const (
	ProvinceAzua                 Province = "azua"
	ProvinceBahoruco             Province = "bahoruco"
	ProvinceBarahona             Province = "barahona"
	ProvinceDajabon              Province = "dajabon"
	ProvinceDistritoNacional     Province = "distrito_nacional"
	ProvinceDuarte               Province = "duarte"
	ProvinceEliasPina            Province = "elias_pina"
	ProvinceElSeibo              Province = "el_seibo"
	ProvinceEspaillat            Province = "espaillat"
	ProvinceHatoMayor            Province = "hato_mayor"
	ProvinceHermanasMirabal      Province = "hermanas_mirabal"
	ProvinceIndependencia        Province = "independencia"
	ProvinceLaAltagracia         Province = "la_altagracia"
	ProvinceLaRomana             Province = "la_romana"
	ProvinceLaVega               Province = "la_vega"
	ProvinceMariaTrinidadSanchez Province = "maria_trinidad_sanchez"
	ProvinceMonsenorNouel        Province = "monsenor_nouel"
	ProvinceMonteCristi          Province = "monte_cristi"
	ProvinceMontePlata           Province = "monte_plata"
	ProvincePedernales           Province = "pedernales"
	ProvincePeravia              Province = "peravia"
	ProvincePuertoPlata          Province = "puerto_plata"
	ProvinceSamana               Province = "samana"
	ProvinceSanchezRamirez       Province = "sanchez_ramirez"
	ProvinceSanCristobal         Province = "san_cristobal"
	ProvinceSanJoseDeOcoa        Province = "san_jose_de_ocoa"
	ProvinceSanJuan              Province = "san_juan"
	ProvinceSanPedroDeMacoris    Province = "san_pedro_de_macoris"
	ProvinceSantiago             Province = "santiago"
	ProvinceSantiagoRodriguez    Province = "santiago_rodriguez"
	ProvinceSantoDomingo         Province = "santo_domingo"
	ProvinceValverde             Province = "valverde"
)

var provinces = map[Province]struct{}{
	ProvinceAzua: {}, ProvinceBahoruco: {}, ProvinceBarahona: {}, ProvinceDajabon: {},
	ProvinceDistritoNacional: {}, ProvinceDuarte: {}, ProvinceEliasPina: {}, ProvinceElSeibo: {},
	ProvinceEspaillat: {}, ProvinceHatoMayor: {}, ProvinceHermanasMirabal: {}, ProvinceIndependencia: {},
	ProvinceLaAltagracia: {}, ProvinceLaRomana: {}, ProvinceLaVega: {}, ProvinceMariaTrinidadSanchez: {},
	ProvinceMonsenorNouel: {}, ProvinceMonteCristi: {}, ProvinceMontePlata: {}, ProvincePedernales: {},
	ProvincePeravia: {}, ProvincePuertoPlata: {}, ProvinceSamana: {}, ProvinceSanchezRamirez: {},
	ProvinceSanCristobal: {}, ProvinceSanJoseDeOcoa: {}, ProvinceSanJuan: {}, ProvinceSanPedroDeMacoris: {},
	ProvinceSantiago: {}, ProvinceSantiagoRodriguez: {}, ProvinceSantoDomingo: {}, ProvinceValverde: {},
}

func (p Province) IsValid() bool {
	_, ok := provinces[p]
	return ok
}

type Specialty struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_specialty_name_hospital" json:"name"`
	HospitalID uint   `gorm:"not null;uniqueIndex:idx_specialty_name_hospital" json:"hospital_id"`

	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}

func (Specialty) TableName() string {
	return "specialties"
}
