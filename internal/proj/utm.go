package proj

import "math"

// WGS84 ellipsoid parameters and UTM constants.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563

	utmScale        = 0.9996
	utmFalseEasting = 500000.0

	utm20CentralMeridian = -63.0 // zone 20 spans 66W to 60W
)

// Derived ellipsoid constants.
var (
	e2  = wgs84F * (2 - wgs84F)    // first eccentricity squared
	ep2 = e2 / (1 - e2)            // second eccentricity squared
	e1  = (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
)

// UTM20N is the UTM Zone 20N projection on the WGS84 datum (EPSG:32620).
// It covers the eastern Caribbean and the Canadian Maritimes, 66W to 60W.
// The transform uses the Snyder series expansions, accurate to well under
// a millimeter within the zone.
type UTM20N struct{}

func (u *UTM20N) EPSG() int { return 32620 }

// ToWGS84 converts a UTM Zone 20N easting/northing to longitude/latitude
// in degrees.
func (u *UTM20N) ToWGS84(easting, northing float64) (lon, lat float64) {
	x := easting - utmFalseEasting
	m := northing / utmScale
	mu := m / (wgs84A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	// Footprint latitude.
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinP := math.Sin(phi1)
	cosP := math.Cos(phi1)
	tanP := math.Tan(phi1)

	c1 := ep2 * cosP * cosP
	t1 := tanP * tanP
	n1 := wgs84A / math.Sqrt(1-e2*sinP*sinP)
	r1 := wgs84A * (1 - e2) / math.Pow(1-e2*sinP*sinP, 1.5)
	d := x / (n1 * utmScale)

	latRad := phi1 - (n1*tanP/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lonRad := radians(utm20CentralMeridian) + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosP

	return degrees(lonRad), degrees(latRad)
}

// FromWGS84 converts longitude/latitude in degrees to a UTM Zone 20N
// easting/northing.
func (u *UTM20N) FromWGS84(lon, lat float64) (easting, northing float64) {
	phi := radians(lat)
	lam := radians(lon)

	sinP := math.Sin(phi)
	cosP := math.Cos(phi)
	tanP := math.Tan(phi)

	n := wgs84A / math.Sqrt(1-e2*sinP*sinP)
	t := tanP * tanP
	c := ep2 * cosP * cosP
	a := cosP * (lam - radians(utm20CentralMeridian))

	m := wgs84A * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*phi -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*phi) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*phi) -
		(35*e2*e2*e2/3072)*math.Sin(6*phi))

	easting = utmScale*n*(a+(1-t+c)*math.Pow(a, 3)/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120) + utmFalseEasting
	northing = utmScale * (m + n*tanP*(a*a/2+
		(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))
	return easting, northing
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
